package sign_test

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/arturoeanton/xmlcore/canon"
	"github.com/arturoeanton/xmlcore/parser"
	"github.com/arturoeanton/xmlcore/sign"
	"github.com/arturoeanton/xmlcore/tree"
)

func selfSignedPEMs(t *testing.T) (certPEM, keyPEM []byte, key *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "xmlcore-test"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate: %v", err)
	}
	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	return certPEM, keyPEM, key
}

func parseDoc(t *testing.T, src string) *tree.Document {
	t.Helper()
	b := tree.NewBuilder()
	p := parser.New(b, parser.Options{})
	if err := p.Write(src); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := p.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	return b.Document()
}

func TestSignProducesVerifiableSignature(t *testing.T) {
	certPEM, keyPEM, key := selfSignedPEMs(t)
	signer, err := sign.NewSigner(certPEM, keyPEM)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	doc := parseDoc(t, `<invoice id="1"><total>100</total></invoice>`)

	sigElem, err := signer.Sign(doc)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if sigElem.Name != "ds:Signature" {
		t.Fatalf("expected ds:Signature root, got %q", sigElem.Name)
	}

	signedInfo := sigElem.Child("ds:SignedInfo")
	if signedInfo == nil {
		t.Fatalf("missing ds:SignedInfo")
	}
	sigValueElem := sigElem.Child("ds:SignatureValue")
	if sigValueElem == nil || sigValueElem.Text() == "" {
		t.Fatalf("missing ds:SignatureValue")
	}

	sigBytes, err := base64.StdEncoding.DecodeString(sigValueElem.Text())
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}

	// DigestValue covers the canonical form of the referenced document.
	digestValueElem := signedInfo.Child("ds:Reference").Child("ds:DigestValue")
	if digestValueElem == nil || digestValueElem.Text() == "" {
		t.Fatalf("missing ds:DigestValue")
	}
	canonicalDoc, err := canon.Canonicalize(doc)
	if err != nil {
		t.Fatalf("canonicalize document: %v", err)
	}
	wantDigest := sha256.Sum256(canonicalDoc)
	gotDigest, err := base64.StdEncoding.DecodeString(digestValueElem.Text())
	if err != nil {
		t.Fatalf("decode digest: %v", err)
	}
	if string(gotDigest) != string(wantDigest[:]) {
		t.Fatalf("DigestValue does not match the document's canonical digest")
	}

	// SignatureValue covers the canonical form of SignedInfo itself, per
	// XML-DSig, not the referenced document, so verification must
	// canonicalize SignedInfo the same way the signer did.
	canonicalSignedInfo, err := canon.CanonicalizeElement(signedInfo)
	if err != nil {
		t.Fatalf("canonicalize SignedInfo: %v", err)
	}
	hash := sha256.Sum256(canonicalSignedInfo)
	if err := rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, hash[:], sigBytes); err != nil {
		t.Fatalf("signature does not verify: %v", err)
	}
}
