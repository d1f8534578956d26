package ingest

import (
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
)

type Warning struct {
	Path string
	Msg  string
}

type Result struct {
	Article     content.Article
	Recommended []string
	Path        string
	Warns       []Warning
	Skip        bool
	Err         error
}

// Set is the outcome of ingesting a content directory.
type Set struct {
	Articles    []content.Article
	Recommended map[string][]string
}

func Ingest(sourceDir string) (Set, []Warning, error) {
	files, err := DiscoverSource(sourceDir)
	if err != nil {
		return Set{}, nil, err
	}

	workers := runtime.GOMAXPROCS(0)
	jobs := make(chan SourceFile)
	results := make(chan Result)

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sf := range jobs {
				results <- ingestFile(sf)
			}
		}()
	}

	go func() {
		for _, f := range files {
			jobs <- f
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	var collected []Result
	var warns []Warning
	var firstErr error
	for r := range results {
		if r.Err != nil {
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}
		warns = append(warns, r.Warns...)
		if r.Skip {
			continue
		}
		collected = append(collected, r)
	}
	if firstErr != nil {
		return Set{}, nil, firstErr
	}

	// workers finish in any order; keep output stable
	sort.Slice(collected, func(i, j int) bool { return collected[i].Path < collected[j].Path })

	set := Set{Recommended: make(map[string][]string)}
	seenID := make(map[string]struct{}, len(collected))
	seenSlug := make(map[string]struct{}, len(collected))
	for _, r := range collected {
		a := r.Article
		if _, ok := seenID[a.ID]; ok {
			warns = append(warns, Warning{Path: r.Path, Msg: "duplicate id, skipped: " + a.ID})
			continue
		}
		if a.Slug != "" {
			key := content.FoldKey(a.Slug)
			if _, ok := seenSlug[key]; ok {
				warns = append(warns, Warning{Path: r.Path, Msg: "duplicate slug, skipped: " + a.Slug})
				continue
			}
			seenSlug[key] = struct{}{}
		}
		seenID[a.ID] = struct{}{}
		set.Articles = append(set.Articles, a)
		if len(r.Recommended) > 0 {
			set.Recommended[a.ID] = r.Recommended
		}
	}
	return set, warns, nil
}

func ingestFile(sf SourceFile) Result {
	raw, err := os.ReadFile(sf.Path)
	if err != nil {
		return Result{Err: err}
	}

	fm, body, fmErr := ParseFrontMatter(raw)
	if fmErr != nil && fmErr != errNoFrontMatter {
		return Result{
			Path:  sf.Rel,
			Warns: []Warning{{Path: sf.Rel, Msg: "failed to parse front matter: " + fmErr.Error()}},
			Skip:  true,
		}
	}

	var warns []Warning
	level, err := content.ParseLevel(fm.PublishingLevel, content.LevelProduction)
	if err != nil {
		warns = append(warns, Warning{Path: sf.Rel, Msg: "unknown publishing_level " + fm.PublishingLevel + ", using PRODUCTION"})
		level = content.LevelProduction
	}
	status := content.PublishStatus(strings.ToLower(strings.TrimSpace(fm.PublishStatus)))
	if status == "" {
		status = content.StatusPublished
	}
	if strings.TrimSpace(fm.Title) == "" {
		warns = append(warns, Warning{Path: sf.Rel, Msg: "title is empty"})
	}

	return Result{
		Article: content.Article{
			ID:              ResolveID(fm, sf.Path),
			Slug:            ResolveSlug(fm),
			Title:           strings.TrimSpace(fm.Title),
			Tags:            fm.Tags,
			Metadata:        fm.Metadata,
			Snippet:         fm.Snippet,
			Content:         string(body),
			PublishingLevel: level,
			PublishStatus:   status,
		},
		Recommended: fm.Recommended,
		Path:        sf.Rel,
		Warns:       warns,
	}
}
