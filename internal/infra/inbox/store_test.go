package inbox

import (
	"context"
	"testing"
)

func TestMemoryInbox(t *testing.T) {
	ctx := context.Background()
	in := NewMemory()
	if seen, _ := in.Seen(ctx, "e-1"); seen {
		t.Fatal("first delivery must not be seen")
	}
	if seen, _ := in.Seen(ctx, "e-1"); !seen {
		t.Fatal("second delivery must be seen")
	}
	_ = in.Forget(ctx, "e-1")
	if seen, _ := in.Seen(ctx, "e-1"); seen {
		t.Fatal("forgotten event must be processed again")
	}
}
