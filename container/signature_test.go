// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package container

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"go.mozilla.org/pkcs7"
)

// selfSignedSigner builds a throwaway RSA key and self-signed certificate,
// the minimal signer pkcs7.NewSignedData needs, for round-trip testing.
func selfSignedSigner(t *testing.T) (*rsa.PrivateKey, *x509.Certificate) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "packcore test signer"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatal(err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatal(err)
	}
	return priv, cert
}

func TestVerifySignatureRoundTrip(t *testing.T) {
	priv, cert := selfSignedSigner(t)
	content := []byte("pack header and directory bytes")

	sd, err := pkcs7.NewSignedData(content)
	if err != nil {
		t.Fatalf("NewSignedData = %v", err)
	}
	sd.Detach()
	if err := sd.AddSigner(cert, priv, pkcs7.SignerInfoConfig{}); err != nil {
		t.Fatalf("AddSigner = %v", err)
	}
	blob, err := sd.Finish()
	if err != nil {
		t.Fatalf("Finish = %v", err)
	}

	certs, err := VerifySignature(SigningPayload(blob), content)
	if err != nil {
		t.Fatalf("VerifySignature = %v", err)
	}
	if len(certs) != 1 || !certs[0].Equal(cert) {
		t.Errorf("VerifySignature returned %+v, want the signing certificate", certs)
	}
}

func TestVerifySignatureRejectsTamperedContent(t *testing.T) {
	priv, cert := selfSignedSigner(t)
	content := []byte("pack header and directory bytes")

	sd, err := pkcs7.NewSignedData(content)
	if err != nil {
		t.Fatalf("NewSignedData = %v", err)
	}
	sd.Detach()
	if err := sd.AddSigner(cert, priv, pkcs7.SignerInfoConfig{}); err != nil {
		t.Fatalf("AddSigner = %v", err)
	}
	blob, err := sd.Finish()
	if err != nil {
		t.Fatalf("Finish = %v", err)
	}

	if _, err := VerifySignature(SigningPayload(blob), []byte("tampered content")); err == nil {
		t.Error("VerifySignature succeeded against tampered content, want error")
	}
}

func TestVerifySignatureRejectsGarbageBlob(t *testing.T) {
	if _, err := VerifySignature(SigningPayload([]byte("not a pkcs7 blob")), nil); err == nil {
		t.Error("VerifySignature succeeded on a garbage blob, want error")
	}
}
