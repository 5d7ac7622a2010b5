package chat

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/suPer8Hu/bundle-chat/internal/ai"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	chunkSize        = 1000
	chunkOverlap     = 200
	maxContextChunks = 4
	minTermLen       = 3
)

var ErrUnsupportedFileType = errors.New("chat: unsupported file type")

// File is an uploaded file before it is split.
type File struct {
	Name    string
	Content []byte
}

func isTextFile(name string) bool {
	ext := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = name[i+1:]
	}
	return ext == "txt"
}

func splitText(text string) ([]string, error) {
	s := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)
	return s.SplitText(text)
}

// AddDocuments splits text files into overlapping chunks stored against the
// conversation. Only .txt files in UTF-8 are accepted, and one bad file
// rejects the whole upload. A file already added to the conversation is
// skipped. It returns the number of chunks stored.
func (s *Service) AddDocuments(ctx context.Context, conversationID string, files []File) (int, error) {
	if err := validConversationID(conversationID); err != nil {
		return 0, err
	}
	if _, err := s.repo.GetConversation(ctx, conversationID); err != nil {
		return 0, err
	}
	for _, f := range files {
		if !isTextFile(f.Name) || !utf8.Valid(f.Content) {
			return 0, fmt.Errorf("%w: %s", ErrUnsupportedFileType, f.Name)
		}
	}

	var docs []Document
	for _, f := range files {
		hash := uuid.NewSHA1(uuid.NameSpaceOID, f.Content).String()
		seen, err := s.repo.HasDocument(ctx, conversationID, hash)
		if err != nil {
			return 0, err
		}
		if seen {
			continue
		}
		chunks, err := splitText(string(f.Content))
		if err != nil {
			return 0, fmt.Errorf("split %s: %w", f.Name, err)
		}
		for i, c := range chunks {
			docs = append(docs, Document{
				ConversationID: conversationID,
				Source:         f.Name,
				Hash:           hash,
				Chunk:          i,
				Content:        c,
			})
		}
	}
	if err := s.repo.InsertDocuments(ctx, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

func terms(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if utf8.RuneCountInString(w) >= minTermLen {
			out[w] = struct{}{}
		}
	}
	return out
}

// selectChunks ranks docs by how many distinct query terms they contain and
// returns at most limit of them. Chunks sharing no term are never returned.
func selectChunks(docs []Document, query string, limit int) []Document {
	q := terms(query)
	if len(q) == 0 {
		return nil
	}

	type scored struct {
		doc   Document
		score int
	}
	var ranked []scored
	for _, d := range docs {
		n := 0
		for t := range terms(d.Content) {
			if _, ok := q[t]; ok {
				n++
			}
		}
		if n > 0 {
			ranked = append(ranked, scored{doc: d, score: n})
		}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int { return cmp.Compare(b.score, a.score) })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]Document, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.doc)
	}
	return out
}

func documentContext(chunks []Document) ai.Message {
	var b strings.Builder
	b.WriteString("Use these excerpts from files the user uploaded when they help answer.\n")
	for _, d := range chunks {
		fmt.Fprintf(&b, "\n[%s, part %d]\n%s\n", d.Source, d.Chunk+1, d.Content)
	}
	return ai.Message{Role: "system", Content: b.String()}
}
