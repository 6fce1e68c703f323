// Package sign is a minimal XML-DSig-shaped signer over trees produced by
// package tree. It builds the ds:SignedInfo subtree directly as tree.Node
// literals, canonicalizes the referenced document with package canon to
// produce DigestValue, then canonicalizes the SignedInfo element itself
// (via canon.CanonicalizeElement) and signs that canonical form, since in
// XML-DSig SignatureValue covers SignedInfo rather than the document it
// references.
package sign

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"

	"github.com/arturoeanton/xmlcore/canon"
	"github.com/arturoeanton/xmlcore/tree"
)

// Signer holds the certificate and private key used to produce a
// Signature element over a document's canonicalized content.
type Signer struct {
	Cert *x509.Certificate
	Key  *rsa.PrivateKey
}

// NewSigner parses a PEM-encoded certificate and RSA private key pair,
// trying PKCS1 first and falling back to PKCS8.
func NewSigner(certPEM, keyPEM []byte) (*Signer, error) {
	certBlock, _ := pem.Decode(certPEM)
	if certBlock == nil {
		return nil, fmt.Errorf("sign: failed to decode certificate PEM")
	}
	cert, err := x509.ParseCertificate(certBlock.Bytes)
	if err != nil {
		return nil, fmt.Errorf("sign: failed to parse x509 certificate: %w", err)
	}

	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil {
		return nil, fmt.Errorf("sign: failed to decode private key PEM")
	}
	key, err := x509.ParsePKCS1PrivateKey(keyBlock.Bytes)
	if err != nil {
		generic, err2 := x509.ParsePKCS8PrivateKey(keyBlock.Bytes)
		if err2 != nil {
			return nil, fmt.Errorf("sign: failed to parse private key: %w", err)
		}
		rsaKey, ok := generic.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("sign: private key is not RSA")
		}
		key = rsaKey
	}
	return &Signer{Cert: cert, Key: key}, nil
}

// CanonicalizationMethod and SignatureMethod are the algorithm URIs this
// signer declares.
const (
	CanonicalizationMethod = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	SignatureMethod        = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
)

// Sign computes the SHA-256 digest of doc's canonicalized content, builds a
// ds:SignedInfo element referencing that digest, canonicalizes SignedInfo
// itself with package canon, and RSA-SHA256-signs that canonical form, per
// the XML-DSig rule that SignatureValue covers SignedInfo rather than the
// document. Returns a "ds:Signature" tree.Node ready to be appended as a
// child of the signed document's root (an enveloped signature).
func (s *Signer) Sign(doc *tree.Document) (*tree.Node, error) {
	canonicalDoc, err := canon.Canonicalize(doc)
	if err != nil {
		return nil, fmt.Errorf("sign: canonicalize document: %w", err)
	}
	digest := sha256.Sum256(canonicalDoc)
	digestValue := base64.StdEncoding.EncodeToString(digest[:])

	signedInfo := buildSignedInfo(digestValue)
	canonicalSignedInfo, err := canon.CanonicalizeElement(signedInfo)
	if err != nil {
		return nil, fmt.Errorf("sign: canonicalize SignedInfo: %w", err)
	}

	sigHash := sha256.Sum256(canonicalSignedInfo)
	sigBytes, err := rsa.SignPKCS1v15(rand.Reader, s.Key, crypto.SHA256, sigHash[:])
	if err != nil {
		return nil, fmt.Errorf("sign: rsa sign: %w", err)
	}
	signatureValue := base64.StdEncoding.EncodeToString(sigBytes)

	certDER := base64.StdEncoding.EncodeToString(s.Cert.Raw)

	return buildSignatureElement(signedInfo, signatureValue, certDER), nil
}

func elemNode(name string, children ...*tree.Node) *tree.Node {
	return &tree.Node{Kind: tree.KindElement, Name: name, Children: children}
}

func attrElemNode(name string, attrs []tree.Attr, children ...*tree.Node) *tree.Node {
	n := elemNode(name, children...)
	n.Attrs = attrs
	return n
}

func textNode(s string) *tree.Node {
	return &tree.Node{Kind: tree.KindText, Data: s}
}

// buildSignedInfo assembles the ds:SignedInfo subtree as tree.Node
// literals. This tree, not the outer ds:Signature wrapper, is what gets
// canonicalized and signed.
func buildSignedInfo(digestValue string) *tree.Node {
	transform := attrElemNode("ds:Transform", []tree.Attr{
		{Name: "Algorithm", Value: "http://www.w3.org/2000/09/xmldsig#enveloped-signature"},
	})
	reference := attrElemNode("ds:Reference", []tree.Attr{{Name: "URI", Value: ""}},
		elemNode("ds:Transforms", transform),
		attrElemNode("ds:DigestMethod", []tree.Attr{
			{Name: "Algorithm", Value: "http://www.w3.org/2001/04/xmlenc#sha256"},
		}),
		elemNode("ds:DigestValue", textNode(digestValue)),
	)
	return elemNode("ds:SignedInfo",
		attrElemNode("ds:CanonicalizationMethod", []tree.Attr{{Name: "Algorithm", Value: CanonicalizationMethod}}),
		attrElemNode("ds:SignatureMethod", []tree.Attr{{Name: "Algorithm", Value: SignatureMethod}}),
		reference,
	)
}

// buildSignatureElement wraps the already-built and already-signed
// SignedInfo subtree together with its SignatureValue and KeyInfo into the
// full ds:Signature element. Element names carry their "ds:" prefix as a
// literal part of the Name string rather than a resolved namespace,
// consistent with this parser core performing no namespace resolution.
func buildSignatureElement(signedInfo *tree.Node, signatureValue, certDER string) *tree.Node {
	keyInfo := elemNode("ds:KeyInfo",
		elemNode("ds:X509Data", elemNode("ds:X509Certificate", textNode(certDER))),
	)

	return attrElemNode("ds:Signature", []tree.Attr{
		{Name: "xmlns:ds", Value: "http://www.w3.org/2000/09/xmldsig#"},
	},
		signedInfo,
		elemNode("ds:SignatureValue", textNode(signatureValue)),
		keyInfo,
	)
}
