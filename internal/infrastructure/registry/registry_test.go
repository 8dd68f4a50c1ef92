package registry_test

import (
	"sort"
	"testing"

	"github.com/kendevco/discordant/internal/infrastructure/registry"
)

func sorted(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

func TestJoinLeaveMembership(t *testing.T) {
	r := registry.New[string]()

	r.Join("c1", registry.Session{RoomID: "room1", UserID: "alice"})
	r.Join("c2", registry.Session{RoomID: "room1", UserID: "bob"})
	r.Join("c3", registry.Session{RoomID: "room2", UserID: "carol"})

	got := sorted(r.MembersOf("room1", ""))
	want := []string{"alice", "bob"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("MembersOf(room1) = %v, want %v", got, want)
	}

	if got := r.MembersOf("room1", "c1"); len(got) != 1 || got[0] != "bob" {
		t.Fatalf("MembersOf excluding c1 = %v, want [bob]", got)
	}

	s, ok := r.Leave("c2")
	if !ok || s.UserID != "bob" {
		t.Fatalf("Leave(c2) = %v, %v", s, ok)
	}

	if got := r.MembersOf("room1", ""); len(got) != 1 || got[0] != "alice" {
		t.Fatalf("MembersOf after leave = %v, want [alice]", got)
	}
}

func TestLeaveLastMemberDeletesRoom(t *testing.T) {
	r := registry.New[string]()

	r.Join("c1", registry.Session{RoomID: "room1", UserID: "alice"})
	r.Leave("c1")

	rooms, conns := r.Counts()
	if rooms != 0 || conns != 0 {
		t.Fatalf("Counts after last leave = (%d, %d), want (0, 0)", rooms, conns)
	}
}

func TestLeaveUnknownConnectionIsNoop(t *testing.T) {
	r := registry.New[string]()

	if _, ok := r.Leave("ghost"); ok {
		t.Fatal("Leave on unknown connection reported a session")
	}
}

func TestJoinIsIdempotentPerHandle(t *testing.T) {
	r := registry.New[string]()

	r.Join("c1", registry.Session{RoomID: "room1", UserID: "alice"})
	r.Join("c1", registry.Session{RoomID: "room1", UserID: "alice"})

	if got := r.MembersOf("room1", ""); len(got) != 1 {
		t.Fatalf("duplicate join produced %d members, want 1", len(got))
	}
}

func TestRejoinMovesConnectionBetweenRooms(t *testing.T) {
	r := registry.New[string]()

	r.Join("c1", registry.Session{RoomID: "room1", UserID: "alice"})
	r.Join("c1", registry.Session{RoomID: "room2", UserID: "alice"})

	if got := r.MembersOf("room1", ""); len(got) != 0 {
		t.Fatalf("room1 still has members after rejoin: %v", got)
	}
	if got := r.MembersOf("room2", ""); len(got) != 1 || got[0] != "alice" {
		t.Fatalf("room2 members = %v, want [alice]", got)
	}

	rooms, _ := r.Counts()
	if rooms != 1 {
		t.Fatalf("rooms = %d, want 1", rooms)
	}
}

func TestFindReturnsLiveConnection(t *testing.T) {
	r := registry.New[string]()

	r.Join("c1", registry.Session{RoomID: "room1", UserID: "alice"})
	r.Join("c2", registry.Session{RoomID: "room1", UserID: "bob"})

	conn, ok := r.Find("bob")
	if !ok || conn != "c2" {
		t.Fatalf("Find(bob) = %q, %v", conn, ok)
	}

	if _, ok := r.Find("nobody"); ok {
		t.Fatal("Find on unknown user reported a connection")
	}
}

func TestPeersExcludesSender(t *testing.T) {
	r := registry.New[string]()

	r.Join("c1", registry.Session{RoomID: "room1", UserID: "alice"})
	r.Join("c2", registry.Session{RoomID: "room1", UserID: "bob"})
	r.Join("c3", registry.Session{RoomID: "room1", UserID: "carol"})

	peers := r.Peers("room1", "c2")
	if len(peers) != 2 {
		t.Fatalf("Peers = %v, want 2 entries", peers)
	}
	for _, p := range peers {
		if p == "c2" {
			t.Fatal("Peers included the excluded connection")
		}
	}
}
