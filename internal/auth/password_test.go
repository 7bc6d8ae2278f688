package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pa55word", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "pa55word" {
		t.Fatal("hash equals plaintext")
	}
	if err := ComparePassword(hash, "pa55word"); err != nil {
		t.Fatalf("ComparePassword: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	}

	other, err := HashPassword("pa55word", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if other == hash {
		t.Fatal("hashes should be salted")
	}
}

func TestCompareDummyAlwaysFails(t *testing.T) {
	if err := CompareDummy("anything", bcrypt.MinCost); err == nil {
		t.Fatal("CompareDummy succeeded")
	}
}
