// Package tagging classifies uploaded attachments. Pure functions, no
// state: a fixed ordered keyword table over the filename and the first 100
// bytes of content. A content-based match overrides the filename-based tag.
package tagging

import (
	"strings"

	"labqc/internal/model"
)

// contentSnippetLen bounds how much of the file body is inspected.
const contentSnippetLen = 100

type rule struct {
	tag model.AttachmentTag
	// A rule fires when any keyword matches, unless allRequired is set, in
	// which case every keyword must match (lab + sheet).
	keywords    []string
	allRequired bool
}

// Rule order matters: the first match wins.
var filenameRules = []rule{
	{tag: model.TagRawScan, keywords: []string{"raw", "scan"}},
	{tag: model.TagReport, keywords: []string{"report", "summary"}},
	{tag: model.TagImage, keywords: []string{"image", "photo"}},
	{tag: model.TagCertificate, keywords: []string{"certificate", "certification"}},
	{tag: model.TagLabSheet, keywords: []string{"lab", "sheet"}, allRequired: true},
	{tag: model.TagMicroscope, keywords: []string{"micro", "microscope"}},
	{tag: model.TagDeviceOutput, keywords: []string{"device", "output"}},
	// "scan" is already claimed by the raw/scan rule above, so in practice
	// this fires on "result" alone.
	{tag: model.TagScanResult, keywords: []string{"scan", "result"}},
}

var contentRules = []rule{
	{tag: model.TagRawScan, keywords: []string{"raw", "scan"}},
	{tag: model.TagReport, keywords: []string{"report", "summary"}},
	{tag: model.TagImage, keywords: []string{"image", "photo"}},
	{tag: model.TagMicroscope, keywords: []string{"microscope"}},
	{tag: model.TagLabSheet, keywords: []string{"lab sheet"}},
	{tag: model.TagCertificate, keywords: []string{"certificate"}},
	{tag: model.TagDeviceOutput, keywords: []string{"device", "output"}},
}

func matchRules(rules []rule, text string) (model.AttachmentTag, bool) {
	for _, r := range rules {
		if r.allRequired {
			all := true
			for _, kw := range r.keywords {
				if !strings.Contains(text, kw) {
					all = false
					break
				}
			}
			if all {
				return r.tag, true
			}
			continue
		}
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.tag, true
			}
		}
	}
	return model.TagOther, false
}

// TagFilename assigns a tag from the filename alone.
func TagFilename(filename string) model.AttachmentTag {
	tag, _ := matchRules(filenameRules, strings.ToLower(filename))
	return tag
}

// TagContent assigns a tag from the leading bytes of the file body. The
// second return is false when no rule fired.
func TagContent(content []byte) (model.AttachmentTag, bool) {
	snippet := content
	if len(snippet) > contentSnippetLen {
		snippet = snippet[:contentSnippetLen]
	}
	return matchRules(contentRules, strings.ToLower(string(snippet)))
}

// Classify combines filename and content tagging. A content match, when it
// fires, overrides the filename tag.
func Classify(filename string, content []byte) model.AttachmentTag {
	tag := TagFilename(filename)
	if contentTag, ok := TagContent(content); ok {
		tag = contentTag
	}
	return tag
}

// AttachmentTypeFor derives the broad attachment type from the declared
// content type of the upload.
func AttachmentTypeFor(contentType string) model.AttachmentType {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "pdf"):
		return model.AttachmentPDF
	case strings.Contains(ct, "image"):
		return model.AttachmentImage
	case strings.Contains(ct, "doc"), strings.Contains(ct, "word"):
		return model.AttachmentDocument
	default:
		return model.AttachmentOther
	}
}
