// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package container

import (
	"crypto/x509"

	"go.mozilla.org/pkcs7"
)

// SigningPayload is the raw PKCS#7 blob carried by packs whose header
// flags mark them as signed. packcore does not locate this blob from
// the index itself (the exact subheader slot signed packs use is a
// §9 Open Question left to the caller, who already knows which pack
// variant it is dealing with); VerifySignature only validates a blob
// handed to it against the pack's covered bytes.
type SigningPayload []byte

// VerifySignature parses blob as a PKCS#7 signed-data structure and
// checks it against content, returning the signer certificates on
// success. Grounded on security.go's certificate-table parsing, here
// narrowed to PKCS#7 verification of a Pack's signed content rather
// than Authenticode directory parsing.
func VerifySignature(blob SigningPayload, content []byte) ([]*x509.Certificate, error) {
	p7, err := pkcs7.Parse(blob)
	if err != nil {
		return nil, &ContainerError{Kind: "signature parse", Cause: err}
	}
	p7.Content = content
	if err := p7.Verify(); err != nil {
		return nil, &ContainerError{Kind: "signature verify", Cause: err}
	}
	return p7.Certificates, nil
}
