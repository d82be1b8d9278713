package gen

import (
	"path"
	"strings"
)

// DefaultSDKPackage is the import path of the runtime package generated
// code is compiled against. Namespace packages live beneath it.
const DefaultSDKPackage = "github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"

// DefaultHeader is the comment placed above the package clause.
const DefaultHeader = "Code generated by routegen. DO NOT EDIT."

// authNamespace hosts ParseError; routes in it call the function unqualified.
const authNamespace = "auth"

// Options controls the shape of emitted files.
type Options struct {
	// SDKPackage is the runtime package import path.
	SDKPackage string

	// Header lines are emitted as line comments before the package clause.
	Header []string

	// StrictUnions adds a default case to union dispatch that reports an
	// unknown discriminant as an error.
	StrictUnions bool
}

// WithDefaults fills unset fields.
func (o Options) WithDefaults() Options {
	if o.SDKPackage == "" {
		o.SDKPackage = DefaultSDKPackage
	}
	o.SDKPackage = strings.TrimSuffix(o.SDKPackage, "/")
	if len(o.Header) == 0 {
		o.Header = []string{DefaultHeader}
	}
	return o
}

// NamespacePath returns the import path of a namespace package.
func (o Options) NamespacePath(ns string) string {
	return o.SDKPackage + "/" + ns
}

// sdkName is the package name of the runtime package. A trailing major
// version element is skipped, as the go tool does.
func (o Options) sdkName() string {
	return packageName(o.SDKPackage)
}

func packageName(importPath string) string {
	base := path.Base(importPath)
	if isMajorVersion(base) {
		base = path.Base(path.Dir(importPath))
	}
	return strings.ReplaceAll(base, "-", "_")
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
