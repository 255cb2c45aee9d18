package memory_test

import (
	"testing"

	"github.com/picatz/foundry/internal/storage/memory"
	"github.com/picatz/foundry/internal/storage/storagetest"
)

func TestBackend(t *testing.T) {
	storagetest.BackendSuite(t, memory.NewBackend[string, string]())
	storagetest.BackendSuite_structs(t, memory.NewBackend[string, storagetest.Record]())
}
