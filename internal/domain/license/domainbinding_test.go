package license

import (
	"testing"
	"time"
)

func TestNewDomainBinding_AutoApprove(t *testing.T) {
	b, err := NewDomainBinding(1, "example.com", true)
	if err != nil {
		t.Fatalf("NewDomainBinding() error = %v", err)
	}
	if b.Status() != BindingStatusActive {
		t.Errorf("status = %s, want active", b.Status())
	}
	if !b.IsVerified() {
		t.Error("auto-approved binding should start verified")
	}
	if b.VerifiedAt() == nil {
		t.Error("auto-approved binding should have verified_at set")
	}
}

func TestNewDomainBinding_Pending(t *testing.T) {
	b, err := NewDomainBinding(1, "example.com", false)
	if err != nil {
		t.Fatalf("NewDomainBinding() error = %v", err)
	}
	if b.Status() != BindingStatusPending {
		t.Errorf("status = %s, want pending", b.Status())
	}
	if b.IsVerified() {
		t.Error("pending binding should not start verified")
	}
	if b.VerifiedAt() != nil {
		t.Error("pending binding should not have verified_at")
	}
}

func TestNewDomainBinding_NormalizesDomain(t *testing.T) {
	b, err := NewDomainBinding(1, "  Example.COM  ", true)
	if err != nil {
		t.Fatalf("NewDomainBinding() error = %v", err)
	}
	if b.Domain() != "example.com" {
		t.Errorf("domain = %q, want %q", b.Domain(), "example.com")
	}
}

func TestNewDomainBinding_Validation(t *testing.T) {
	if _, err := NewDomainBinding(0, "example.com", true); err == nil {
		t.Error("binding without license ID should fail")
	}
	if _, err := NewDomainBinding(1, "   ", true); err == nil {
		t.Error("binding with blank domain should fail")
	}
}

func TestDomainBinding_MarkVerified(t *testing.T) {
	b, err := NewDomainBinding(1, "example.com", false)
	if err != nil {
		t.Fatalf("NewDomainBinding() error = %v", err)
	}

	b.MarkVerified()
	first := b.VerifiedAt()
	if first == nil {
		t.Fatal("verified_at should be set after MarkVerified")
	}

	time.Sleep(5 * time.Millisecond)
	b.MarkVerified()
	if !b.VerifiedAt().Equal(*first) {
		t.Error("verified_at should keep the first verification time")
	}
}

func TestDomainBinding_Touch(t *testing.T) {
	b, err := NewDomainBinding(1, "example.com", true)
	if err != nil {
		t.Fatalf("NewDomainBinding() error = %v", err)
	}
	if b.LastUsedAt() != nil {
		t.Fatal("last_used_at should start nil")
	}

	b.Touch()
	if b.LastUsedAt() == nil {
		t.Error("Touch() should stamp last_used_at")
	}
}

func TestDomainBinding_IsRecentlyUsed(t *testing.T) {
	b, err := NewDomainBinding(1, "example.com", true)
	if err != nil {
		t.Fatalf("NewDomainBinding() error = %v", err)
	}
	if b.IsRecentlyUsed(30) {
		t.Error("never-used binding should not be recently used")
	}

	b.Touch()
	if !b.IsRecentlyUsed(30) {
		t.Error("just-touched binding should be recently used")
	}
	if b.IsRecentlyUsed(0) {
		t.Error("zero window should never match")
	}
}

func TestDomainBinding_StatusChanges(t *testing.T) {
	b, err := NewDomainBinding(1, "example.com", true)
	if err != nil {
		t.Fatalf("NewDomainBinding() error = %v", err)
	}

	if err := b.Deactivate(); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if b.IsActive() {
		t.Error("deactivated binding should not count against the cap")
	}

	if err := b.Suspend(); err != nil {
		t.Fatalf("Suspend() error = %v", err)
	}
	if b.Status() != BindingStatusSuspended {
		t.Errorf("status = %s, want suspended", b.Status())
	}

	if err := b.Activate(); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if !b.IsActive() {
		t.Error("activated binding should be active")
	}
}
