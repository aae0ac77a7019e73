package webui

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"surveydash/internal/aggregate"
	"surveydash/internal/dataset"
	"surveydash/internal/filter"
	"surveydash/internal/render"
	"surveydash/internal/survey"
)

// FlashApplied is shown after the filter form is submitted.
const FlashApplied = "Filters applied successfully!"

var templateFuncs = template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"ago":   humanize.Time,
}

func abortJSON(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// view resolves the request's criteria against the current dataset. It
// writes the error or 304 response itself and reports false in that case.
func (s *Server) view(c *gin.Context) (dataset.View, bool) {
	crit, err := filter.FromValues(c.Request.URL.Query())
	if err != nil {
		abortJSON(c, http.StatusBadRequest, err)
		return dataset.View{}, false
	}
	v, err := s.store.Query(crit)
	if err != nil {
		if errors.Is(err, dataset.ErrNotLoaded) {
			abortJSON(c, http.StatusServiceUnavailable, err)
		} else {
			s.log.Error("query failed", zap.Error(err))
			abortJSON(c, http.StatusInternalServerError, err)
		}
		return dataset.View{}, false
	}

	etag := v.ETag()
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	if etagMatches(c.GetHeader("If-None-Match"), etag) {
		c.AbortWithStatus(http.StatusNotModified)
		return dataset.View{}, false
	}
	return v, true
}

// etagMatches implements the weak comparison of If-None-Match.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

func (s *Server) handleSummary(c *gin.Context) {
	v, ok := s.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, v.Report.Summary)
}

func (s *Server) handleReport(c *gin.Context) {
	v, ok := s.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dataset":  v.Dataset.ID.String(),
		"criteria": v.Criteria,
		"report":   v.Report,
	})
}

// options lists the selector choices derived from the loaded data.
type options struct {
	Genders   []survey.Gender `json:"genders"`
	Countries []string        `json:"countries"`
	Remote    []string        `json:"remote"`
	Tech      []string        `json:"tech"`
}

func optionsFor(ds *dataset.Dataset) options {
	return options{
		Genders:   survey.Genders(),
		Countries: ds.Countries(),
		Remote:    ds.Values(survey.FieldRemoteWork),
		Tech:      ds.Values(survey.FieldTechCompany),
	}
}

func (s *Server) handleOptions(c *gin.Context) {
	ds, err := s.store.Current()
	if err != nil {
		abortJSON(c, http.StatusServiceUnavailable, err)
		return
	}
	c.Header("ETag", ds.ETag())
	if etagMatches(c.GetHeader("If-None-Match"), ds.ETag()) {
		c.AbortWithStatus(http.StatusNotModified)
		return
	}
	c.JSON(http.StatusOK, optionsFor(ds))
}

func (s *Server) handleChart(c *gin.Context) {
	file := c.Param("file")
	ext := path.Ext(file)
	name := strings.TrimSuffix(file, ext)
	format, err := render.ParseFormat(ext)
	if err != nil {
		abortJSON(c, http.StatusBadRequest, err)
		return
	}
	if !knownChart(name) {
		abortJSON(c, http.StatusNotFound, errors.New("unknown chart "+name))
		return
	}

	v, ok := s.view(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err = render.Render(&buf, name, v.Report, format)
	switch {
	case errors.Is(err, render.ErrNoData):
		c.Status(http.StatusNoContent)
		return
	case err != nil:
		s.log.Error("render chart", zap.String("chart", name), zap.Error(err))
		abortJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func knownChart(name string) bool {
	for _, n := range render.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func (s *Server) handleReload(c *gin.Context) {
	ds, err := s.store.Load(c.Request.Context())
	if err != nil {
		abortJSON(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dataset":   ds.ID.String(),
		"rows":      ds.Len(),
		"skipped":   ds.Skipped,
		"loaded_at": ds.LoadedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	ds, err := s.store.Current()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "dataset": ds.ID.String(), "rows": ds.Len()})
}

type chartLink struct {
	ID    string
	Title string
	URL   template.URL
}

type pageData struct {
	Criteria filter.Criteria
	Options  options
	Dataset  *dataset.Dataset
	Report   aggregate.Report
	Charts   []chartLink
	Flash    string
	Error    string
}

var chartTitles = map[string]string{
	render.Age:     "Treatment by Age Group",
	render.Gender:  "Treatment by Gender",
	render.Country: "Top 10 Countries",
	render.Remote:  "Remote vs Office",
}

func (s *Server) handleIndex(c *gin.Context) {
	data := pageData{Options: options{Genders: survey.Genders()}}
	status := http.StatusOK

	crit, err := filter.FromValues(c.Request.URL.Query())
	ds, loadErr := s.store.Current()
	switch {
	case err != nil:
		status, data.Error = http.StatusBadRequest, err.Error()
	case loadErr != nil:
		status, data.Error = http.StatusServiceUnavailable, "The survey dataset is still loading."
	default:
		v, qerr := s.store.Query(crit)
		if qerr != nil {
			status, data.Error = http.StatusServiceUnavailable, qerr.Error()
			break
		}
		data.Criteria = crit
		data.Dataset = ds
		data.Options = optionsFor(ds)
		data.Report = v.Report
		q := crit.Values().Encode()
		for _, name := range render.Available(v.Report) {
			u := "/charts/" + name + ".svg"
			if q != "" {
				u += "?" + q
			}
			data.Charts = append(data.Charts, chartLink{ID: name + "-chart", Title: chartTitles[name], URL: template.URL(u)})
		}
		if _, submitted := c.GetQuery("apply"); submitted {
			data.Flash = FlashApplied
			s.log.Debug("filters applied", zap.Stringer("criteria", crit), zap.Int("rows", v.Report.Summary.Respondents))
		}
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		s.log.Error("template error", zap.Error(err))
		c.String(http.StatusInternalServerError, "template error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
