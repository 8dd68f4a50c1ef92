package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	IO              Category = "IO"
	Internal        Category = "Internal"
	Signaling       Category = "Signaling"
	Workflow        Category = "Workflow"
	AI              Category = "AI"
	RabbitMQ        Category = "RabbitMQ"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// Signaling
	Relay    SubCategory = "Relay"
	Presence SubCategory = "Presence"

	// Workflow
	Dispatch SubCategory = "Dispatch"
	Fallback SubCategory = "Fallback"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	HostIp       ExtraKey = "HostIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	BodySize     ExtraKey = "BodySize"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	RoomId       ExtraKey = "RoomId"
	UserId       ExtraKey = "UserId"
	ChannelId    ExtraKey = "ChannelId"
	MessageId    ExtraKey = "MessageId"
	WorkflowId   ExtraKey = "WorkflowId"
	ErrorMessage ExtraKey = "ErrorMessage"
)
