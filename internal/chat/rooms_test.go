package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRooms_EnsureIdempotent(t *testing.T) {
	d := NewRooms("Lobby")
	assert.False(t, d.Ensure("Lobby"))
	assert.True(t, d.Ensure("Tech"))
	assert.False(t, d.Ensure("Tech"))
	assert.Equal(t, []string{"Lobby", "Tech"}, d.Names())
	assert.Equal(t, 2, d.Count())
}

func TestRooms_NamesSortedCaseSensitive(t *testing.T) {
	d := NewRooms("Lobby", "tech", "Tech", "art")
	assert.Equal(t, []string{"Lobby", "Tech", "art", "tech"}, d.Names())
}

func TestRooms_MembershipSetOps(t *testing.T) {
	d := NewRooms()
	d.AddMember("Tech", "bob")
	d.AddMember("Tech", "alice")
	d.AddMember("Tech", "alice")
	assert.True(t, d.Exists("Tech"), "AddMember implies Ensure")
	assert.Equal(t, []string{"alice", "bob"}, d.Members("Tech"))

	assert.True(t, d.RemoveMember("Tech", "alice"))
	assert.False(t, d.RemoveMember("Tech", "alice"))
	assert.False(t, d.RemoveMember("Nowhere", "alice"))
	assert.Equal(t, []string{"bob"}, d.Members("Tech"))

	d.RemoveMember("Tech", "bob")
	assert.Empty(t, d.Members("Tech"))
	assert.True(t, d.Exists("Tech"), "empty rooms remain")
}

func TestRooms_MembersIsSnapshot(t *testing.T) {
	d := NewRooms()
	d.AddMember("Tech", "alice")
	snap := d.Members("Tech")
	d.AddMember("Tech", "bob")
	assert.Equal(t, []string{"alice"}, snap)
}

func TestRooms_ConcurrentAccess(t *testing.T) {
	d := NewRooms("Lobby")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			nick := fmt.Sprintf("u%d", i)
			for j := 0; j < 100; j++ {
				d.AddMember("Lobby", nick)
				_ = d.Members("Lobby")
				_ = d.Names()
				d.RemoveMember("Lobby", nick)
			}
			d.AddMember("Lobby", nick)
		}(i)
	}
	wg.Wait()
	assert.Len(t, d.Members("Lobby"), 8)
}
