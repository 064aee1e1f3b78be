package redis

import (
	"testing"
	"time"
)

func TestConfig_Enabled(t *testing.T) {
	if (Config{}).Enabled() {
		t.Error("empty address must disable redis")
	}
	if !(Config{Addr: "localhost:6379"}).Enabled() {
		t.Error("address set must enable redis")
	}
}

func TestNewLock_DefaultTTL(t *testing.T) {
	l := NewLock(nil, ImportLockKey, 0)
	if l.ttl != defaultLockTTL {
		t.Errorf("ttl = %v, want %v", l.ttl, defaultLockTTL)
	}
	if l.token == "" || l.key != ImportLockKey {
		t.Errorf("unexpected lock: %+v", l)
	}
	if other := NewLock(nil, ImportLockKey, time.Second); other.token == l.token {
		t.Error("tokens must be unique per lock")
	}
}
