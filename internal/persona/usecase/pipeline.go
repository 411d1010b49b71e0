package usecase

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"

	personadomain "persona-backend/internal/persona/domain"
)

// Chunk size limits per source type.
const (
	DefaultMaxChars  = 500
	DocumentMaxChars = 600
)

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	replyHeadRe  = regexp.MustCompile(`(?m)^On .{0,120} wrote:\s*$`)
	forwardedRe  = regexp.MustCompile(`(?m)^-+ ?(Forwarded message|Original Message) ?-+.*$`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
	mediaOmitRe  = regexp.MustCompile(`<Media omitted>|<attached: [^>]+>`)
	signatureSep = "\n-- \n"
)

// NormalizeText strips channel artifacts down to plain text: quoted
// reply blocks, signature tails, media placeholders and HTML tags.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	// Drop everything below the signature separator.
	if idx := strings.Index(text, signatureSep); idx >= 0 {
		text = text[:idx]
	}

	// Cut at reply/forward headers; the quoted conversation below them
	// is not the user's writing.
	if loc := replyHeadRe.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}
	if loc := forwardedRe.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}

	// Remove remaining quoted lines.
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), ">") {
			continue
		}
		lines = append(lines, line)
	}
	text = strings.Join(lines, "\n")

	text = mediaOmitRe.ReplaceAllString(text, "")
	text = htmlTagRe.ReplaceAllString(text, "")
	text = blankRunRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// ChunkText splits normalized text at blank-line boundaries into chunks
// of at most maxChars. Adjacent paragraphs are packed together while
// they fit; a paragraph longer than maxChars is emitted as a single
// chunk rather than split mid-sentence. Chunks shorter than the minimum
// sample length are discarded.
func ChunkText(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		chunk := strings.TrimSpace(current.String())
		current.Reset()
		if len(chunk) >= personadomain.MinSampleChars {
			chunks = append(chunks, chunk)
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len(para) > maxChars {
			// Oversized paragraph stands alone.
			flush()
			if len(para) >= personadomain.MinSampleChars {
				chunks = append(chunks, para)
			}
			continue
		}

		if current.Len() > 0 && current.Len()+2+len(para) > maxChars {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return chunks
}

// HashChunk computes the dedup hash of a chunk.
func HashChunk(chunk string) string {
	sum := md5.Sum([]byte(chunk))
	return hex.EncodeToString(sum[:])
}

func maxCharsFor(sourceType string) int {
	if sourceType == personadomain.SourceDocument {
		return DocumentMaxChars
	}
	return DefaultMaxChars
}
