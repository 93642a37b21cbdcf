package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"CreatorProfiler/internal/domain"
	"CreatorProfiler/internal/ports"
)

// maxJobBodyBytes bounds a job submission payload.
const maxJobBodyBytes = 64 << 10

// JobHandler serves job submission, status and report lookups.
type JobHandler struct {
	repo   ports.JobRepository
	logger *slog.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(repo ports.JobRepository, logger *slog.Logger) *JobHandler {
	return &JobHandler{repo: repo, logger: logger}
}

type createJobRequest struct {
	Name         string `json:"name"`
	Timeframe    string `json:"timeframe"`
	YTChannelURL string `json:"yt_channel_url"`
	PodcastRSS   string `json:"podcast_rss"`
	SiteRSS      string `json:"site_rss"`
	OtherLinks   string `json:"other_links"`
}

type jobResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Timeframe    string    `json:"timeframe"`
	YTChannelURL string    `json:"yt_channel_url"`
	PodcastRSS   string    `json:"podcast_rss"`
	SiteRSS      string    `json:"site_rss"`
	OtherLinks   string    `json:"other_links"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type itemResponse struct {
	Date              string   `json:"date"`
	Title             string   `json:"title"`
	URL               string   `json:"url"`
	Platform          string   `json:"platform"`
	Description       string   `json:"description"`
	SensationalTerms  []string `json:"sensational_terms"`
	LoadedTerms       []string `json:"loaded_terms"`
	UsVsThem          bool     `json:"us_vs_them"`
	ExplicitLanguage  bool     `json:"explicit_language"`
	Clickbait         bool     `json:"clickbait"`
	AppealAuthority   bool     `json:"appeal_authority"`
	AppealCommonSense bool     `json:"appeal_common_sense"`
	AppealEmotion     bool     `json:"appeal_emotion"`
	AnecdoteAsTrend   bool     `json:"anecdote_as_trend"`
	AffiliationsFound []string `json:"affiliations_found"`
	IdeologyHits      []string `json:"ideology_hits"`
	Monetization      []string `json:"monetization"`
}

type reportResponse struct {
	Job            jobResponse    `json:"job"`
	Items          []itemResponse `json:"items"`
	ReportMarkdown string         `json:"report_markdown"`
}

// CreateJob queues a new profiling job.
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJobBodyBytes)

	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	job, err := req.toJob()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.repo.CreateJob(r.Context(), job)
	if err != nil {
		h.serverError(w, "create job", err)
		return
	}

	h.logger.Info("job queued", "job_id", created.ID, "creator", created.Name)
	respondWithJSON(w, http.StatusCreated, toJobResponse(created))
}

// ListJobs returns all jobs, newest first.
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.repo.ListJobs(r.Context())
	if err != nil {
		h.serverError(w, "list jobs", err)
		return
	}

	out := make([]jobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, toJobResponse(job))
	}
	respondWithJSON(w, http.StatusOK, out)
}

// GetJob returns one job's status.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}

	job, err := h.repo.GetJob(r.Context(), id)
	if errors.Is(err, ports.ErrJobNotFound) {
		respondWithError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		h.serverError(w, "get job", err)
		return
	}
	respondWithJSON(w, http.StatusOK, toJobResponse(job))
}

// GetReport returns the job, its collected items and the report Markdown.
func (h *JobHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}

	rep, err := h.repo.GetReport(r.Context(), id)
	if errors.Is(err, ports.ErrJobNotFound) {
		respondWithError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		h.serverError(w, "get report", err)
		return
	}

	items := make([]itemResponse, 0, len(rep.Items))
	for _, it := range rep.Items {
		items = append(items, toItemResponse(it))
	}
	respondWithJSON(w, http.StatusOK, reportResponse{
		Job:            toJobResponse(rep.Job),
		Items:          items,
		ReportMarkdown: rep.Markdown,
	})
}

func (h *JobHandler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("http handler failed", "op", op, "error", err)
	respondWithError(w, http.StatusInternalServerError, "Internal error")
}

func (req createJobRequest) toJob() (domain.Job, error) {
	job := domain.Job{
		Name:         strings.TrimSpace(req.Name),
		Timeframe:    strings.TrimSpace(req.Timeframe),
		YTChannelURL: strings.TrimSpace(req.YTChannelURL),
		PodcastRSS:   strings.TrimSpace(req.PodcastRSS),
		SiteRSS:      strings.TrimSpace(req.SiteRSS),
		OtherLinks:   req.OtherLinks,
		Status:       domain.StatusQueued,
	}
	if job.Name == "" {
		return domain.Job{}, errors.New("name is required")
	}
	if job.Timeframe == "" {
		job.Timeframe = domain.DefaultTimeframe
	}

	links := []struct{ field, raw string }{
		{"yt_channel_url", job.YTChannelURL},
		{"podcast_rss", job.PodcastRSS},
		{"site_rss", job.SiteRSS},
	}
	for _, l := range links {
		if l.raw != "" && !isHTTPURL(l.raw) {
			return domain.Job{}, errors.New(l.field + " must be an http(s) URL")
		}
	}
	return job, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func jobID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid job id")
		return 0, false
	}
	return id, true
}

func toJobResponse(job domain.Job) jobResponse {
	return jobResponse{
		ID:           job.ID,
		Name:         job.Name,
		Timeframe:    job.Timeframe,
		YTChannelURL: job.YTChannelURL,
		PodcastRSS:   job.PodcastRSS,
		SiteRSS:      job.SiteRSS,
		OtherLinks:   job.OtherLinks,
		Status:       string(job.Status),
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
}

func toItemResponse(it domain.EnrichedItem) itemResponse {
	return itemResponse{
		Date:              it.Date,
		Title:             it.Title,
		URL:               it.URL,
		Platform:          it.Platform,
		Description:       it.Description,
		SensationalTerms:  orEmpty(it.SensationalTerms),
		LoadedTerms:       orEmpty(it.LoadedTerms),
		UsVsThem:          it.UsVsThem,
		ExplicitLanguage:  it.ExplicitLanguage,
		Clickbait:         it.Clickbait,
		AppealAuthority:   it.AppealAuthority,
		AppealCommonSense: it.AppealCommonSense,
		AppealEmotion:     it.AppealEmotion,
		AnecdoteAsTrend:   it.AnecdoteAsTrend,
		AffiliationsFound: orEmpty(it.AffiliationsFound),
		IdeologyHits:      orEmpty(it.IdeologyHits),
		Monetization:      orEmpty(it.Monetization),
	}
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
