package record

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActivityTable_Bump(t *testing.T) {
	table := NewActivityTable()

	assert.Equal(t, 1, table.Bump("alice"))
	assert.Equal(t, 2, table.Bump("alice"))
	assert.Equal(t, 3, table.Bump("alice"))
	assert.Equal(t, 1, table.Bump("bob"))

	assert.Equal(t, 3, table.Count("alice"))
	assert.Equal(t, 1, table.Count("bob"))
	assert.Equal(t, 0, table.Count("carol"))
	assert.Equal(t, 2, table.Authors())
}

func TestActivityTable_FreshTablesAreIndependent(t *testing.T) {
	first := NewActivityTable()
	first.Bump("alice")
	first.Bump("alice")

	second := NewActivityTable()
	assert.Equal(t, 1, second.Bump("alice"))
}

func TestActivityTable_ConcurrentBumps(t *testing.T) {
	table := NewActivityTable()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				table.Bump("alice")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, table.Count("alice"))
}
