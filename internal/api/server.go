package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/crawlserv/crawlservpp-sub000/internal/query"
	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

// reply is the command channel's uniform JSON response, exactly
// spec.md §6's {fail, confirm, id, text} shape.
type reply struct {
	Fail    bool   `json:"fail"`
	Confirm bool   `json:"confirm"`
	ID      int64  `json:"id,omitempty"`
	Text    string `json:"text,omitempty"`
}

func ok(text string, id int64) reply { return reply{Confirm: true, ID: id, Text: text} }
func failed(err error) reply         { return reply{Fail: true, Text: err.Error()} }

// command is the generic envelope every request decodes into; unused
// fields for a given Cmd are simply ignored, matching spec.md §6's
// "one JSON command per request" framing rather than one Go type per
// verb.
type command struct {
	Cmd string `json:"cmd"`

	ThreadID    int64 `json:"threadId"`
	TargetURLID int64 `json:"targetUrlId"`

	Module    string `json:"module"`
	WebsiteID int64  `json:"websiteId"`
	URLListID int64  `json:"urlListId"`
	ConfigID  int64  `json:"configId"`

	Namespace        string `json:"namespace"`        // website.add: the website's own namespace
	WebsiteNamespace string `json:"websiteNamespace"` // urllist.add: its parent website's namespace
	Name             string `json:"name"`
	Domain           string `json:"domain"`
	CaseSensitive    bool   `json:"caseSensitive"`

	QueryID      int64           `json:"queryId"`
	QueryType    store.QueryType `json:"queryType"`
	Text         string          `json:"text"`
	ResultBool   bool            `json:"resultBool"`
	ResultSingle bool            `json:"resultSingle"`
	ResultMulti  bool            `json:"resultMulti"`
	ResultSub    bool            `json:"resultSub"`
	TextOnly     bool            `json:"textOnly"`
	Input        string          `json:"input"`

	ConfigurationJSON json.RawMessage `json:"configurationJson"`

	ListNamespace string `json:"listNamespace"`
	Column        string `json:"column"` // "crawled" | "parsed" | "extracted" | "analyzed"
}

// Server is the command channel's HTTP front end.
type Server struct {
	db       *store.DB
	registry *Registry
	port     int
	logger   *zerolog.Logger
}

// NewServer builds a Server bound to db and registry.
func NewServer(db *store.DB, registry *Registry, port int, logger *zerolog.Logger) *Server {
	return &Server{db: db, registry: registry, port: port, logger: logger}
}

// Start blocks serving the command channel until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/command", s.handleCommand)

	srv := &http.Server{Addr: fmt.Sprintf(":%d", s.port), Handler: mux}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Msg("command channel starting")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeReply(w, failed(fmt.Errorf("decode command: %w", err)))
		return
	}

	writeReply(w, s.dispatch(r.Context(), cmd))
}

func writeReply(w http.ResponseWriter, rep reply) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rep)
}

//nolint:cyclop // one switch per command verb is the spec's own shape (spec.md §6)
func (s *Server) dispatch(ctx context.Context, cmd command) reply {
	switch cmd.Cmd {
	case "thread.start":
		rec, err := s.registry.StartNew(ctx, cmd.Module, cmd.WebsiteID, cmd.URLListID, cmd.ConfigID)
		if err != nil {
			return failed(err)
		}

		return ok("thread started", rec.ID)
	case "thread.pause":
		if err := s.registry.Pause(ctx, cmd.ThreadID); err != nil {
			return failed(err)
		}

		return ok("thread paused", cmd.ThreadID)
	case "thread.unpause":
		if err := s.registry.Unpause(ctx, cmd.ThreadID); err != nil {
			return failed(err)
		}

		return ok("thread resumed", cmd.ThreadID)
	case "thread.stop":
		if err := s.registry.Stop(ctx, cmd.ThreadID); err != nil {
			return failed(err)
		}

		return ok("thread stopped", cmd.ThreadID)
	case "thread.warp":
		if err := s.registry.WarpTo(cmd.ThreadID, cmd.TargetURLID); err != nil {
			return failed(err)
		}

		return ok("thread warped", cmd.ThreadID)
	case "website.add":
		site, err := s.db.CreateWebsite(ctx, store.Website{Namespace: cmd.Namespace, Name: cmd.Name, Domain: cmd.Domain})
		if err != nil {
			return failed(err)
		}

		return ok("website created", site.ID)
	case "website.delete":
		if err := s.db.DeleteWebsite(ctx, cmd.WebsiteID); err != nil {
			return failed(err)
		}

		return ok("website deleted", cmd.WebsiteID)
	case "urllist.add":
		list, err := s.db.CreateURLList(ctx, cmd.WebsiteNamespace, store.URLList{
			WebsiteID: cmd.WebsiteID, Namespace: cmd.ListNamespace, Name: cmd.Name, CaseSensitive: cmd.CaseSensitive,
		})
		if err != nil {
			return failed(err)
		}

		return ok("url list created", list.ID)
	case "urllist.delete":
		if err := s.db.DeleteURLList(ctx, cmd.URLListID); err != nil {
			return failed(err)
		}

		return ok("url list deleted", cmd.URLListID)
	case "urllist.reset":
		n, err := s.resetURLList(ctx, cmd)
		if err != nil {
			return failed(err)
		}

		return ok(fmt.Sprintf("reset %d rows", n), cmd.URLListID)
	case "query.add":
		rec, err := s.db.CreateQuery(ctx, store.QueryRecord{
			WebsiteID: cmd.WebsiteID, Type: cmd.QueryType, Text: cmd.Text,
			ResultBool: cmd.ResultBool, ResultSingle: cmd.ResultSingle, ResultMulti: cmd.ResultMulti,
			ResultSub: cmd.ResultSub, TextOnly: cmd.TextOnly,
		})
		if err != nil {
			return failed(err)
		}

		return ok("query created", rec.ID)
	case "query.delete":
		if err := s.db.DeleteQuery(ctx, cmd.QueryID); err != nil {
			return failed(err)
		}

		return ok("query deleted", cmd.QueryID)
	case "query.test":
		return s.testQuery(ctx, cmd)
	case "configuration.add":
		c, err := s.db.CreateConfiguration(ctx, store.Configuration{Module: cmd.Module, Name: cmd.Name, JSON: cmd.ConfigurationJSON})
		if err != nil {
			return failed(err)
		}

		return ok("configuration created", c.ID)
	case "configuration.update":
		c, err := s.db.UpdateConfiguration(ctx, cmd.ConfigID, cmd.ConfigurationJSON)
		if err != nil {
			return failed(err)
		}

		return ok("configuration updated", c.ID)
	case "configuration.delete":
		if err := s.db.DeleteConfiguration(ctx, cmd.ConfigID); err != nil {
			return failed(err)
		}

		return ok("configuration deleted", cmd.ConfigID)
	default:
		return failed(fmt.Errorf("unknown command %q", cmd.Cmd))
	}
}

func (s *Server) resetURLList(ctx context.Context, cmd command) (int64, error) {
	list, err := s.db.GetURLList(ctx, cmd.URLListID)
	if err != nil {
		return 0, fmt.Errorf("load url list: %w", err)
	}

	website, err := s.db.GetWebsite(ctx, list.WebsiteID)
	if err != nil {
		return 0, fmt.Errorf("load website: %w", err)
	}

	return s.db.ResetURLListColumn(ctx, website.Namespace, list.Namespace, cmd.Column)
}

// testQuery compiles an ephemeral query and runs it against cmd.Input,
// implementing spec.md §6's "test-query on a string" verb without
// persisting anything.
func (s *Server) testQuery(ctx context.Context, cmd command) reply {
	q, err := query.Compile(store.QueryRecord{
		Type: cmd.QueryType, Text: cmd.Text,
		ResultBool: true, ResultSingle: true, ResultMulti: true, ResultSub: true, TextOnly: true,
	})
	if err != nil {
		return failed(err)
	}

	matched, err := q.Bool(ctx, []byte(cmd.Input))
	if err != nil {
		return failed(err)
	}

	all, err := q.All(ctx, []byte(cmd.Input))
	if err != nil {
		return failed(err)
	}

	return ok(fmt.Sprintf("matched=%t results=%v", matched, all), 0)
}
