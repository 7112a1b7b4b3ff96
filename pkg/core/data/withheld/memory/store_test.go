package memory

import (
	"testing"

	"github.com/tokenworks/mint-server/pkg/core/data/withheld/tests"
)

func TestWithheldMemoryStore(t *testing.T) {
	testStore := New()
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunTests(t, testStore, teardown)
}
