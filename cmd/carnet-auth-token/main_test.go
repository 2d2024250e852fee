package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/carnet-go/carnet/pkg/account"
)

func TestReadToken(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "driver"}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}

	token, acct, err := readToken(strings.NewReader(signed + "\n"))
	if err != nil {
		t.Fatal(err)
	}
	if token != signed {
		t.Error("token was not trimmed")
	}
	if acct.Subject != "driver" {
		t.Errorf("subject = %q", acct.Subject)
	}

	if _, _, err := readToken(strings.NewReader("not-a-jwt")); !errors.Is(err, account.ErrMalformedToken) {
		t.Errorf("expected malformed token, got %v", err)
	}
}
