package similarity

import "testing"

func TestFingerprint_Deterministic(t *testing.T) {
	t.Parallel()
	content := "Quarterly report, final draft.\n"
	if Fingerprint(content) != Fingerprint(content) {
		t.Fatalf("same content must produce the same digest")
	}
	if len(Fingerprint(content)) != 64 {
		t.Fatalf("digest must be fixed-length hex, got %d chars", len(Fingerprint(content)))
	}
}

func TestFingerprint_SensitiveToBytes(t *testing.T) {
	t.Parallel()
	// Normalization-equivalent but not byte-identical content must differ:
	// the fingerprint is an exact-duplicate key, not a similarity key.
	a := Fingerprint("The cat sat on the mat")
	b := Fingerprint("the cat sat on the mat")
	c := Fingerprint("The cat sat on the mat ")
	if a == b || a == c {
		t.Fatalf("byte-distinct content produced identical digests")
	}
}
