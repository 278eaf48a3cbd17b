package dedup

import (
	"testing"
	"time"
)

func TestShouldProcessWithinTTL(t *testing.T) {
	d := New(time.Minute, 10)
	now := time.Unix(1000, 0)
	d.now = func() time.Time { return now }

	k := Key("cmd/hall/ota", []byte("start"))
	if !d.ShouldProcess(k) {
		t.Fatalf("first delivery must pass")
	}
	if d.ShouldProcess(k) {
		t.Fatalf("redelivery must be dropped")
	}
	now = now.Add(2 * time.Minute)
	if !d.ShouldProcess(k) {
		t.Fatalf("after ttl the same command is new again")
	}
	if !d.ShouldProcess("") {
		t.Fatalf("empty id always passes")
	}
}

func TestKeyDependsOnTopic(t *testing.T) {
	if Key("a", []byte("on")) == Key("b", []byte("on")) {
		t.Fatalf("same payload on different topics must differ")
	}
	if Key("ab", []byte("c")) == Key("a", []byte("bc")) {
		t.Fatalf("topic/payload boundary must be part of the key")
	}
}

func TestCapacityBound(t *testing.T) {
	d := New(time.Hour, 3)
	now := time.Unix(0, 0)
	d.now = func() time.Time { now = now.Add(time.Second); return now }
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		d.ShouldProcess(id)
	}
	if d.Len() != 3 {
		t.Fatalf("len=%d want 3", d.Len())
	}
	// "a" was the oldest and got evicted
	if !d.ShouldProcess("a") {
		t.Fatalf("evicted id must be processed again")
	}
}
