package chat_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/killallgit/cortex-chat/pkg/chat"
	"github.com/killallgit/cortex-chat/pkg/config"
	"github.com/killallgit/cortex-chat/pkg/cortex"
	"github.com/killallgit/cortex-chat/pkg/stream"
	"github.com/killallgit/cortex-chat/pkg/warehouse"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const revenueStream = `data: {"id":"1","object":"message.delta","delta":{"content":[{"type":"text","text":"Revenue is "},{"type":"tool_results","tool_results":{"content":[{"type":"json","json":{"text":"up 5%.","sql":"SELECT 1;","searchResults":[{"source_id":"doc1","doc_id":"d1","text":"snippet"}]}}]}}]}}

data: [DONE]
`

type fakeAgent struct {
	mu       sync.Mutex
	body     string
	err      error
	release  chan struct{}
	requests []cortex.RunRequest
}

func (f *fakeAgent) Run(ctx context.Context, req cortex.RunRequest) (io.ReadCloser, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.body)), nil
}

func (f *fakeAgent) lastRequest() cortex.RunRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type fakeExecutor struct {
	result  *warehouse.Result
	err     error
	queries []string
}

func (f *fakeExecutor) Query(_ context.Context, sql string) (*warehouse.Result, error) {
	f.queries = append(f.queries, sql)
	return f.result, f.err
}

type recordingSurface struct {
	users     []string
	displays  []string
	citations [][]stream.Citation
	sql       []string
	tables    []*warehouse.Result
	errors    []error
	busy      []bool
}

func (s *recordingSurface) ShowUser(text string) { s.users = append(s.users, text) }

func (s *recordingSurface) ShowAssistant(display string, citations []stream.Citation) {
	s.displays = append(s.displays, display)
	s.citations = append(s.citations, citations)
}

func (s *recordingSurface) ShowSQL(sql string)                  { s.sql = append(s.sql, sql) }
func (s *recordingSurface) ShowTable(result *warehouse.Result) { s.tables = append(s.tables, result) }
func (s *recordingSurface) ShowError(err error)                 { s.errors = append(s.errors, err) }
func (s *recordingSurface) Busy(active bool)                    { s.busy = append(s.busy, active) }

type staticSession struct{}

func (staticSession) Authorize(_ context.Context, req *http.Request) error {
	req.Header.Set("Authorization", "Bearer test")
	return nil
}

func (staticSession) HTTPClient() *http.Client { return http.DefaultClient }

var _ = Describe("Orchestrator", func() {
	var (
		agent    *fakeAgent
		executor *fakeExecutor
		surface  *recordingSurface
		orch     *chat.Orchestrator
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		agent = &fakeAgent{body: revenueStream}
		executor = &fakeExecutor{result: &warehouse.Result{
			Columns: []string{"1"},
			Rows:    [][]string{{"1"}},
		}}
		surface = &recordingSurface{}
		orch = chat.NewOrchestrator(agent, executor, chat.Options{
			Model: "llama3.1-70b",
			Resources: config.ResourcesConfig{
				SearchService: "DASH_DB.DASH_SCHEMA.VEHICLES_INFO",
			},
		})
	})

	Describe("HandleTurn", func() {
		It("should assemble the answer, record both turns and run the SQL", func() {
			outcome, err := orch.HandleTurn(ctx, surface, "What is revenue?")
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Failed()).To(BeFalse())

			Expect(outcome.Text).To(Equal("Revenue is up 5%."))
			Expect(outcome.Answer.SQL).To(Equal("SELECT 1;"))
			Expect(outcome.Citations).To(Equal([]stream.Citation{
				{SourceID: "doc1", DocID: "d1", Text: "snippet"},
			}))

			turns := orch.Transcript().Turns()
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].Role).To(Equal(chat.RoleUser))
			Expect(turns[0].Content).To(Equal("What is revenue?"))
			Expect(turns[1].Role).To(Equal(chat.RoleAssistant))
			Expect(turns[1].Content).To(Equal("Revenue is up 5%."))

			Expect(surface.users).To(Equal([]string{"What is revenue?"}))
			Expect(surface.sql).To(Equal([]string{"SELECT 1;"}))
			Expect(executor.queries).To(Equal([]string{"SELECT 1;"}))
			Expect(surface.tables).To(HaveLen(1))
			Expect(surface.errors).To(BeEmpty())
			Expect(orch.State()).To(Equal(chat.StateIdle))
		})

		It("should request a single search result for interactive turns", func() {
			_, err := orch.HandleTurn(ctx, surface, "What is revenue?")
			Expect(err).NotTo(HaveOccurred())

			req := agent.lastRequest()
			Expect(req.Model).To(Equal("llama3.1-70b"))
			Expect(req.Messages[0].Content[0].Text).To(Equal("What is revenue?"))
			Expect(req.ToolResources[cortex.ToolVehiclesSearch].MaxResults).To(Equal(chat.InteractiveSearchLimit))
		})

		It("should balance busy indicators", func() {
			_, err := orch.HandleTurn(ctx, surface, "What is revenue?")
			Expect(err).NotTo(HaveOccurred())
			Expect(surface.busy).To(Equal([]bool{true, false, true, false}))
		})

		It("should reject blank input without touching the transcript", func() {
			outcome, err := orch.HandleTurn(ctx, surface, "   ")
			Expect(err).To(MatchError(chat.ErrEmptyInput))
			Expect(outcome).To(BeNil())
			Expect(orch.Transcript().Len()).To(Equal(0))
			Expect(agent.requests).To(BeEmpty())
		})

		It("should store bullet markers but display paragraph breaks", func() {
			agent.body = `data: {"object":"message.delta","delta":{"content":[{"type":"text","text":"Top regions:• EMEA【†1†】• APAC"}]}}` + "\n"

			outcome, err := orch.HandleTurn(ctx, surface, "Top regions?")
			Expect(err).NotTo(HaveOccurred())

			turns := orch.Transcript().Turns()
			Expect(turns).To(HaveLen(2))
			stored := turns[1]
			Expect(stored.IsAssistant()).To(BeTrue())
			Expect(stored.Content).To(Equal("Top regions:• EMEA[1]• APAC"))
			Expect(outcome.Display).To(Equal("Top regions:\n\n EMEA[1]\n\n APAC"))
			Expect(surface.displays).To(Equal([]string{outcome.Display}))
		})

		It("should hide citations without a document ID", func() {
			agent.body = `data: {"object":"message.delta","delta":{"content":[{"type":"tool_results","tool_results":{"content":[{"type":"json","json":{"text":"See docs.","searchResults":[{"source_id":"a","doc_id":""},{"source_id":"b","doc_id":"d2","text":"t"}]}}]}}]}}` + "\n"

			outcome, err := orch.HandleTurn(ctx, surface, "docs?")
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Answer.Citations).To(HaveLen(2))
			Expect(surface.citations).To(HaveLen(1))
			Expect(surface.citations[0]).To(Equal([]stream.Citation{{SourceID: "b", DocID: "d2", Text: "t"}}))
		})

		It("should add no assistant turn and run no query for an empty answer", func() {
			agent.body = "data: [DONE]\n"

			outcome, err := orch.HandleTurn(ctx, surface, "anything?")
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Answer.IsEmpty()).To(BeTrue())
			Expect(orch.Transcript().Len()).To(Equal(1))
			Expect(surface.displays).To(BeEmpty())
			Expect(executor.queries).To(BeEmpty())
			Expect(surface.errors).To(BeEmpty())
		})

		It("should keep well-formed contributions around a malformed line", func() {
			agent.body = strings.Join([]string{
				`data: {"object":"message.delta","delta":{"content":[{"type":"text","text":"A"}]}}`,
				`data: {not json`,
				`data: {"object":"message.delta","delta":{"content":[{"type":"text","text":"B"}]}}`,
			}, "\n")

			outcome, err := orch.HandleTurn(ctx, surface, "q")
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Text).To(Equal("AB"))
			Expect(outcome.Skipped).To(Equal(1))
		})

		Context("when the agent call fails", func() {
			It("should report the error, add no assistant turn and keep working", func() {
				agent.err = &cortex.TransportError{StatusCode: http.StatusInternalServerError, Status: "500 Internal Server Error"}

				outcome, err := orch.HandleTurn(ctx, surface, "first")
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome.Failed()).To(BeTrue())
				Expect(cortex.IsTransportError(outcome.TransportErr)).To(BeTrue())
				Expect(surface.errors).To(HaveLen(1))
				Expect(surface.displays).To(BeEmpty())
				Expect(executor.queries).To(BeEmpty())

				turns := orch.Transcript().Turns()
				Expect(turns).To(HaveLen(1))
				Expect(turns[0].IsUser()).To(BeTrue())

				agent.err = nil
				outcome, err = orch.HandleTurn(ctx, surface, "second")
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome.Failed()).To(BeFalse())
				Expect(orch.Transcript().Len()).To(Equal(3))
			})

			It("should surface an HTTP 500 from the agent endpoint", func() {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					http.Error(w, "warehouse suspended", http.StatusInternalServerError)
				}))
				defer server.Close()

				client := cortex.NewClient(server.URL, staticSession{})
				orch = chat.NewOrchestrator(client, executor, chat.Options{Model: "llama3.1-70b"})

				outcome, err := orch.HandleTurn(ctx, surface, "What is revenue?")
				Expect(err).NotTo(HaveOccurred())

				var transportErr *cortex.TransportError
				Expect(errors.As(outcome.TransportErr, &transportErr)).To(BeTrue())
				Expect(transportErr.StatusCode).To(Equal(http.StatusInternalServerError))
				Expect(outcome.TransportErr.Error()).To(ContainSubstring("warehouse suspended"))
				Expect(orch.Transcript().Len()).To(Equal(1))
			})
		})

		Context("when the query fails", func() {
			It("should report the error, render no table and keep the answer", func() {
				executor.err = &warehouse.QueryError{Message: "Object 'SALES' does not exist"}
				executor.result = nil

				outcome, err := orch.HandleTurn(ctx, surface, "What is revenue?")
				Expect(err).NotTo(HaveOccurred())
				Expect(warehouse.IsQueryError(outcome.QueryErr)).To(BeTrue())
				Expect(outcome.Result).To(BeNil())
				Expect(surface.tables).To(BeEmpty())
				Expect(surface.errors).To(HaveLen(1))
				Expect(surface.displays).To(HaveLen(1))
				Expect(orch.Transcript().Len()).To(Equal(2))
			})
		})

		Context("when the query returns no rows", func() {
			It("should render no table and report no error", func() {
				executor.result = &warehouse.Result{Columns: []string{"N"}}

				outcome, err := orch.HandleTurn(ctx, surface, "What is revenue?")
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome.QueryErr).NotTo(HaveOccurred())
				Expect(outcome.Result.IsEmpty()).To(BeTrue())
				Expect(surface.tables).To(BeEmpty())
				Expect(surface.errors).To(BeEmpty())
			})
		})

		Context("without an executor", func() {
			It("should report that SQL cannot be run", func() {
				orch = chat.NewOrchestrator(agent, nil, chat.Options{})

				outcome, err := orch.HandleTurn(ctx, surface, "What is revenue?")
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome.QueryErr).To(MatchError(chat.ErrNoExecutor))
			})
		})

		It("should refuse a second turn while one is in flight", func() {
			agent.release = make(chan struct{})
			done := make(chan error, 1)
			go func() {
				_, err := orch.HandleTurn(ctx, &recordingSurface{}, "slow")
				done <- err
			}()

			Eventually(orch.State).Should(Equal(chat.StateAwaitingAgent))

			_, err := orch.HandleTurn(ctx, surface, "fast")
			Expect(err).To(MatchError(chat.ErrTurnInProgress))

			close(agent.release)
			Eventually(done).Should(Receive(BeNil()))
			Expect(orch.State()).To(Equal(chat.StateIdle))
		})
	})

	Describe("Reset", func() {
		It("should clear a non-empty transcript", func() {
			_, err := orch.HandleTurn(ctx, surface, "What is revenue?")
			Expect(err).NotTo(HaveOccurred())
			Expect(orch.Transcript().Len()).To(Equal(2))

			Expect(func() { orch.Reset() }).NotTo(Panic())
			Expect(orch.Transcript().Len()).To(Equal(0))
		})

		It("should be safe before any turn", func() {
			Expect(func() { orch.Reset() }).NotTo(Panic())
			Expect(orch.Transcript().Turns()).To(BeEmpty())
		})
	})
})
