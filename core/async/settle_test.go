package async

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestSettleKeepsInputOrder(t *testing.T) {
	items := []int{5, 1, 4, 2, 3}

	outcomes := Settle(context.Background(), items, func(_ context.Context, n int) (int, error) {
		// Later inputs finish first so completion order differs from
		// input order.
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * 10, nil
	})

	if len(outcomes) != len(items) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(items))
	}
	for i, o := range outcomes {
		if o.Err != nil {
			t.Fatalf("outcome %d: unexpected error %v", i, o.Err)
		}
		if o.Value != items[i]*10 {
			t.Errorf("outcome %d = %d, want %d", i, o.Value, items[i]*10)
		}
	}
}

func TestSettlePartialFailure(t *testing.T) {
	items := []string{"ok-1", "fail", "ok-2"}

	outcomes := Settle(context.Background(), items, func(_ context.Context, s string) (string, error) {
		if s == "fail" {
			return "", errors.New("boom")
		}
		return strings.ToUpper(s), nil
	})

	if outcomes[0].Err != nil || outcomes[0].Value != "OK-1" {
		t.Errorf("outcome 0 = (%q, %v), want (OK-1, nil)", outcomes[0].Value, outcomes[0].Err)
	}
	if outcomes[1].Err == nil {
		t.Error("outcome 1: expected error, got nil")
	}
	if outcomes[2].Err != nil || outcomes[2].Value != "OK-2" {
		t.Errorf("outcome 2 = (%q, %v), want (OK-2, nil)", outcomes[2].Value, outcomes[2].Err)
	}
}

func TestSettleRecoversPanic(t *testing.T) {
	items := []int{1, 2, 3}

	outcomes := Settle(context.Background(), items, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			panic(fmt.Sprintf("branch %d exploded", n))
		}
		return n, nil
	})

	if outcomes[1].Err == nil {
		t.Fatal("panicking branch should surface as an error outcome")
	}
	if !strings.Contains(outcomes[1].Err.Error(), "panic") {
		t.Errorf("error %q should mention the panic", outcomes[1].Err)
	}
	if outcomes[0].Err != nil || outcomes[2].Err != nil {
		t.Error("sibling branches must not be affected by a panic")
	}
}

func TestSettleEmptyInput(t *testing.T) {
	outcomes := Settle(context.Background(), nil, func(_ context.Context, n int) (int, error) {
		return n, nil
	})
	if len(outcomes) != 0 {
		t.Errorf("got %d outcomes for empty input, want 0", len(outcomes))
	}
}

func TestPartition(t *testing.T) {
	outcomes := []Outcome[int]{
		{Value: 1},
		{Err: errors.New("first failure")},
		{Value: 3},
		{Err: errors.New("second failure")},
	}

	values, errs := Partition(outcomes)

	if len(values) != 2 || values[0] != 1 || values[1] != 3 {
		t.Errorf("values = %v, want [1 3]", values)
	}
	if len(errs) != 2 || errs[0] != "first failure" || errs[1] != "second failure" {
		t.Errorf("errs = %v", errs)
	}
}
