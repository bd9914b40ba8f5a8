package eutils

import "encoding/xml"

// ESearchResult is the XML payload returned by esearch.fcgi.
type ESearchResult struct {
	XMLName   xml.Name   `xml:"eSearchResult"`
	Count     int        `xml:"Count"`
	RetMax    int        `xml:"RetMax"`
	RetStart  int        `xml:"RetStart"`
	WebEnv    string     `xml:"WebEnv"`
	QueryKey  string     `xml:"QueryKey"`
	IDList    IDList     `xml:"IdList"`
	ErrorList *ErrorList `xml:"ErrorList"`
}

// IDList holds the PMIDs returned by a search.
type IDList struct {
	IDs []string `xml:"Id"`
}

// ErrorList holds query diagnostics. A PhraseNotFound entry means an empty
// result, not an error.
type ErrorList struct {
	PhraseNotFound []string `xml:"PhraseNotFound"`
	FieldNotFound  []string `xml:"FieldNotFound"`
}
