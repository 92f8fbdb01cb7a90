package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAccess(t *testing.T) {
	d := &Document{ID: "d1", OwnerID: "owner", CollaboratorIDs: []string{"alice", "bob"}}

	assert.True(t, CanAccess(d, "owner"))
	assert.True(t, CanAccess(d, "alice"))
	assert.True(t, CanAccess(d, "bob"))
	assert.False(t, CanAccess(d, "mallory"))
	assert.False(t, CanAccess(d, ""))
	assert.False(t, CanAccess(nil, "owner"))
}

func TestCanAccessNoCollaborators(t *testing.T) {
	d := &Document{ID: "d2", OwnerID: "owner"}
	assert.True(t, CanAccess(d, "owner"))
	assert.False(t, CanAccess(d, "alice"))
}
