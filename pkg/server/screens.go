package server

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-reqdoc/pkg/cache"
	"github.com/goliatone/go-reqdoc/pkg/diff"
	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/renderers/web"
	"github.com/goliatone/go-reqdoc/pkg/view"
)

// Project screen pages, relative to the link base.
const (
	PageIndex       = "index.html"
	PageProjectTree = "project_tree.html"
	PageMatrix      = "traceability_matrix.html"
	PageCoverage    = "source_coverage.html"
	PageDiff        = "diff.html"
	PageChangelog   = "changelog.html"
)

type screenRequest struct {
	screen     render.Screen
	format     string
	feature    string
	variant    string
	standalone bool
	// resolve picks the document and namespace from the locked snapshot.
	resolve func(snap Snapshot) (*model.Document, render.Namespace, error)
}

// page serves every GET below the link base.
func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	rel, ok := s.relativePath(r.URL.Path)
	if !ok {
		s.httpError(w, r, fmt.Errorf("%w: %s", ErrNotFound, r.URL.Path))
		return
	}

	format := FormatHTML
	if strings.HasSuffix(rel, ".md") {
		format = FormatMarkdown
		rel = strings.TrimSuffix(rel, ".md") + ".html"
	} else {
		format = s.negotiate(r)
	}
	if rel == "" {
		rel = PageIndex
	}

	req := screenRequest{format: format}
	switch rel {
	case PageIndex:
		if uid := strings.TrimSpace(r.URL.Query().Get("a")); uid != "" {
			s.stableLink(w, r, uid)
			return
		}
		req.screen = render.ScreenProjectIndex
	case PageProjectTree:
		req.screen = render.ScreenProjectTree
	case PageMatrix:
		req.screen, req.feature = render.ScreenMatrix, model.FeatureMatrix
	case PageCoverage:
		req.screen, req.feature = render.ScreenCoverage, model.FeatureSourceTraceability
	case PageDiff:
		req.screen, req.feature = render.ScreenDiff, model.FeatureDiff
	case PageChangelog:
		req.screen, req.feature = render.ScreenChangelog, model.FeatureDiff
	default:
		screen, standalone, err := documentScreen(r.URL.Query().Get("screen"))
		if err != nil {
			s.httpError(w, r, err)
			return
		}
		req.screen, req.standalone = screen, standalone
		req.resolve = func(snap Snapshot) (*model.Document, render.Namespace, error) {
			for _, doc := range snap.Project.Documents {
				if doc.HTMLLink() == rel {
					return doc, nil, nil
				}
			}
			return nil, nil, fmt.Errorf("%w: document %s", ErrNotFound, rel)
		}
	}
	s.serveScreen(w, r, req)
}

func documentScreen(raw string) (render.Screen, bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "document":
		return render.ScreenDocument, false, nil
	case "standalone":
		return render.ScreenDocument, true, nil
	case "content":
		return render.ScreenDocumentContent, false, nil
	case "toc":
		return render.ScreenTOC, false, nil
	case "pdf":
		return render.ScreenPDF, false, nil
	default:
		return "", false, fmt.Errorf("%w: unknown document screen %q", errBadRequest, raw)
	}
}

// showFullNode renders one node, by default in the full variant.
func (s *Server) showFullNode(w http.ResponseWriter, r *http.Request) {
	var ref nodeRef
	if err := decodeForm(r, &ref); err != nil {
		s.httpError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	mid := firstNonEmpty(ref.ReferenceMID, ref.NodeID)
	if mid == "" {
		s.httpError(w, r, fmt.Errorf("%w: reference_mid is required", errBadRequest))
		return
	}
	format := s.negotiate(r)
	variant := r.URL.Query().Get("variant")
	if variant == "" {
		variant = web.VariantFull
	}
	s.serveScreen(w, r, screenRequest{
		screen:  render.ScreenNode,
		format:  format,
		variant: variant,
		resolve: func(snap Snapshot) (*model.Document, render.Namespace, error) {
			if doc, ok := snap.Project.DocumentByMID(mid); ok {
				return doc, render.Namespace{"mid": mid}, nil
			}
			node, ok := snap.Project.FindNode(mid)
			if !ok {
				return nil, nil, fmt.Errorf("%w: node %q", ErrNotFound, mid)
			}
			return node.Document(), render.Namespace{"mid": mid}, nil
		},
	})
}

// stableLink redirects /?a=UID to the page and anchor of the node.
func (s *Server) stableLink(w http.ResponseWriter, r *http.Request, uid string) {
	var target string
	err := s.store.Read(func(snap Snapshot) error {
		node, ok := snap.Index.Lookup(uid)
		if !ok {
			return fmt.Errorf("%w: UID %q", ErrNotFound, uid)
		}
		obj, err := s.viewFor(snap, false)
		if err != nil {
			return err
		}
		target = obj.RenderDocumentLink(node.Document()) + "#" + obj.RenderLocalAnchor(node)
		return nil
	})
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) serveScreen(w http.ResponseWriter, r *http.Request, req screenRequest) {
	ctx := r.Context()
	var page cache.Page
	err := s.store.Read(func(snap Snapshot) error {
		if req.feature != "" && !snap.Project.HasFeature(req.feature) {
			return fmt.Errorf("%w: feature %s is disabled", ErrNotFound, req.feature)
		}
		var (
			doc *model.Document
			ns  render.Namespace
		)
		if req.resolve != nil {
			var err error
			if doc, ns, err = req.resolve(snap); err != nil {
				return err
			}
		}
		docMID := ""
		if doc != nil {
			docMID = doc.MID
		}
		key := cache.Key(snap.Revision, req.format, string(req.screen), docMID, ns.String("mid"), req.variant, strconv.FormatBool(req.standalone))

		cached, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			s.metrics.cacheResult(true)
			page = cached
			return nil
		case !errors.Is(err, cache.ErrMiss):
			s.logger.Warn("page cache get", "key", key, "error", err)
		}
		s.metrics.cacheResult(false)

		renderer, err := s.renderers.Get(req.format)
		if err != nil {
			return err
		}
		obj, err := s.viewFor(snap, req.standalone)
		if err != nil {
			return err
		}
		if doc != nil {
			obj = obj.ForDocument(doc)
		}
		var changes *diff.ChangeSet
		if req.screen == render.ScreenDiff || req.screen == render.ScreenChangelog {
			baseline := snap.Baseline
			if baseline == nil {
				baseline = snap.Project
			}
			if changes, err = diff.Compare(baseline, snap.Project); err != nil {
				return err
			}
		}

		started := time.Now()
		body, err := renderer.Render(ctx, render.Request{
			Screen:    req.screen,
			View:      obj,
			Namespace: ns,
			Changes:   changes,
			Options:   s.options(req.variant),
		})
		s.metrics.observeRender(string(req.screen), req.format, started, err)
		if err != nil {
			return err
		}
		page = cache.Page{ContentType: renderer.ContentType(), Body: body}
		if err := s.cache.Set(ctx, key, page); err != nil {
			s.logger.Warn("page cache set", "key", key, "error", err)
		}
		return nil
	})
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", page.ContentType)
	_, _ = w.Write(page.Body)
}

func (s *Server) viewFor(snap Snapshot, standalone bool) (*view.Object, error) {
	opts := make([]view.Option, 0, len(s.viewOpts)+4)
	opts = append(opts, s.viewOpts...)
	opts = append(opts,
		view.WithLinkBase(s.linkBase),
		view.WithStaticPrefix(s.staticPrefix),
		view.WithServer(true),
		view.WithStandalone(standalone),
	)
	return view.New(snap.Project, snap.Index, opts...)
}

func (s *Server) options(variant string) render.RenderOptions {
	opts := s.renderOpts
	if variant != "" {
		opts.Variant = variant
	}
	return opts
}

// relativePath strips the link base from an URL path.
func (s *Server) relativePath(urlPath string) (string, bool) {
	if urlPath+"/" == s.linkBase {
		return "", true
	}
	if !strings.HasPrefix(urlPath, s.linkBase) {
		return "", false
	}
	return strings.TrimPrefix(urlPath, s.linkBase), true
}

// negotiate picks the output format from ?format= or the first Accept entry
// a registered renderer produces. HTML is the fallback.
func (s *Server) negotiate(r *http.Request) string {
	if format := strings.TrimSpace(r.URL.Query().Get("format")); format != "" && s.renderers.Has(format) {
		return strings.ToLower(format)
	}
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil || mediaType == "*/*" {
			continue
		}
		if renderer, ok := s.renderers.ForContentType(mediaType); ok {
			return renderer.Name()
		}
	}
	return FormatHTML
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
