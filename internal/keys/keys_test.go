package keys

import (
	"testing"
)

func TestECDHAgreement(t *testing.T) {
	t.Parallel()
	a, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}

	secretAB, err := DH(a, &b.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	secretBA, err := DH(b, &a.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	if string(secretAB) != string(secretBA) {
		t.Fatalf("shared secrets differ: %x vs %x", secretAB, secretBA)
	}
}

func TestSPKIRoundTrip(t *testing.T) {
	t.Parallel()
	priv, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	x5u, err := EncodeSPKI(&priv.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	pub, err := DecodeSPKI(x5u)
	if err != nil {
		t.Fatal(err)
	}
	if pub.X.Cmp(priv.PublicKey.X) != 0 || pub.Y.Cmp(priv.PublicKey.Y) != 0 {
		t.Fatal("decoded public key does not match original")
	}
}

func TestSelfSignedChainSingleLink(t *testing.T) {
	t.Parallel()
	priv, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	x5u, err := EncodeSPKI(&priv.PublicKey)
	if err != nil {
		t.Fatal(err)
	}

	var claims Claims
	claims.ExtraData.DisplayName = "Steve"
	claims.IdentityPublicKey = x5u

	tok, err := Sign(priv, x5u, claims)
	if err != nil {
		t.Fatal(err)
	}

	result, err := VerifyChain([]string{tok})
	if err != nil {
		t.Fatalf("verify chain: %v", err)
	}
	if result.Verified {
		t.Fatal("self-signed chain must not be marked verified against the trusted root")
	}
	if result.Claims[0].ExtraData.DisplayName != "Steve" {
		t.Fatalf("got displayName %q, want Steve", result.Claims[0].ExtraData.DisplayName)
	}
}

func TestChainLinkMismatchRejected(t *testing.T) {
	t.Parallel()
	priv1, _ := GenerateKeypair()
	priv2, _ := GenerateKeypair()
	x5u1, _ := EncodeSPKI(&priv1.PublicKey)
	x5u2, _ := EncodeSPKI(&priv2.PublicKey)

	var c1 Claims
	c1.IdentityPublicKey = "not-" + x5u2 // deliberately wrong link
	tok1, err := Sign(priv1, x5u1, c1)
	if err != nil {
		t.Fatal(err)
	}

	var c2 Claims
	c2.ExtraData.DisplayName = "Alex"
	tok2, err := Sign(priv2, x5u2, c2)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := VerifyChain([]string{tok1, tok2}); err == nil {
		t.Fatal("expected chain verification to fail on x5u/identityPublicKey mismatch")
	}
}
