package ui

import (
	"bytes"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	"instviz/adapters/excel"
	"instviz/adapters/render"
	"instviz/domain/core"
	"instviz/internal/errors"
	"instviz/internal/metrics"
	"instviz/internal/report"
)

const (
	uploadField = "dataset"
	infoMessage = "Please upload an Excel file to begin analysis."
	xlsxMIME    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type chartView struct {
	report.ChartResult
	Src template.URL
}

type pageData struct {
	Title          string
	Intro          template.HTML
	MaxMB          int
	Error          string
	Info           string
	Report         *report.Report
	Linkable       bool
	CompositeTitle string
	Charts         []chartView
}

func (s *Server) page() pageData {
	return pageData{
		Title: s.cfg.Dashboard.Title,
		Intro: s.intro,
		MaxMB: s.cfg.Upload.MaxMB,
	}
}

// statusFor maps error codes onto HTTP statuses
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	data := s.page()
	data.Info = infoMessage
	s.renderTemplate(c, http.StatusOK, templateIndex, data)
}

func (s *Server) renderLoadError(c *gin.Context, status int, err error) {
	data := s.page()
	data.Error = fmt.Sprintf("Error loading file: %v", err)
	s.renderTemplate(c, status, templateIndex, data)
}

// handleUpload loads a spreadsheet, builds its report and redirects to it
func (s *Server) handleUpload(c *gin.Context) {
	limit := s.cfg.UploadLimit()
	// leave room for the multipart envelope around the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)

	file, header, err := c.Request.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.metrics.IncUploads(metrics.UploadRejected)
			s.renderLoadError(c, http.StatusRequestEntityTooLarge,
				fmt.Errorf("file exceeds the %dMB limit", s.cfg.Upload.MaxMB))
			return
		}
		s.logger.Debug("[Upload] no file uploaded: %v", err)
		s.metrics.IncUploads(metrics.UploadRejected)
		data := s.page()
		data.Info = infoMessage
		s.renderTemplate(c, http.StatusBadRequest, templateIndex, data)
		return
	}
	defer file.Close()

	if header.Size > limit {
		s.logger.Warn("[Upload] %s rejected: %d bytes", header.Filename, header.Size)
		s.metrics.IncUploads(metrics.UploadRejected)
		s.renderLoadError(c, http.StatusRequestEntityTooLarge,
			fmt.Errorf("file size (%.1f MB) exceeds the %dMB limit", float64(header.Size)/(1024*1024), s.cfg.Upload.MaxMB))
		return
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		s.metrics.IncUploads(metrics.UploadFailed)
		s.renderLoadError(c, http.StatusBadRequest, err)
		return
	}
	fingerprint := core.NewHash(raw)

	if id, ok := s.store.Lookup(fingerprint); ok {
		s.logger.Info("[Upload] %s (%s) already analysed as %s", header.Filename, fingerprint.Short(), id)
		s.metrics.IncStoreHits()
		s.metrics.IncUploads(metrics.UploadOK)
		c.Redirect(http.StatusSeeOther, "/reports/"+id.String())
		return
	}

	wb, err := excel.NewDataReader("").WithLogger(s.logger).ReadFrom(bytes.NewReader(raw), header.Filename)
	if err != nil {
		s.logger.Warn("[Upload] %s could not be loaded: %v", header.Filename, err)
		s.metrics.IncUploads(metrics.UploadRejected)
		s.renderLoadError(c, statusFor(err), err)
		return
	}

	start := time.Now()
	rep, err := s.builder.Build(c.Request.Context(), wb.Table, wb.Source)
	if err != nil {
		s.logger.Error("[Upload] report for %s failed: %v", header.Filename, err)
		s.metrics.IncUploads(metrics.UploadFailed)
		s.renderLoadError(c, statusFor(err), err)
		return
	}
	s.metrics.ObserveBuildDuration(time.Since(start))
	for _, m := range rep.MissingCharts() {
		s.metrics.IncChartsMissing(m.ID)
	}
	rep.Fingerprint = fingerprint
	rep.Warnings = append(rep.Warnings, wb.Warnings...)
	s.metrics.IncUploads(metrics.UploadOK)

	if !s.store.Enabled() {
		s.renderReport(c, rep, false)
		return
	}
	if err := s.store.Put(rep); err != nil {
		// oversized reports are still shown once
		s.logger.Warn("[Upload] report %s not stored: %v", rep.ID, err)
		s.renderReport(c, rep, false)
		return
	}
	c.Redirect(http.StatusSeeOther, "/reports/"+rep.ID.String())
}

// loadReport resolves the :id parameter against the store
func (s *Server) loadReport(c *gin.Context) (*report.Report, error) {
	id, err := core.ParseReportID(c.Param("id"))
	if err != nil {
		return nil, errors.NotFound("report")
	}
	rep, err := s.store.Get(id)
	if err != nil {
		s.metrics.IncStoreMisses()
		return nil, err
	}
	s.metrics.IncStoreHits()
	return rep, nil
}

func (s *Server) handleReport(c *gin.Context) {
	rep, err := s.loadReport(c)
	if err != nil {
		data := s.page()
		data.Error = "Report not found or expired. Upload the file again."
		s.renderTemplate(c, statusFor(err), templateIndex, data)
		return
	}
	s.renderReport(c, rep, true)
}

// renderReport shows a report; linkable pages reference image routes,
// others embed the tiles as data URIs
func (s *Server) renderReport(c *gin.Context, rep *report.Report, linkable bool) {
	data := s.page()
	data.Report = rep
	data.Linkable = linkable
	data.CompositeTitle = render.CompositeTitle(len(rep.Charts))

	for _, ch := range rep.Charts {
		v := chartView{ChartResult: ch}
		if linkable {
			v.Src = template.URL(fmt.Sprintf("/reports/%s/charts/%s", rep.ID, ch.ID))
		} else {
			v.Src = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(ch.PNG))
		}
		data.Charts = append(data.Charts, v)
	}
	s.renderTemplate(c, http.StatusOK, templateReport, data)
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("[Handler] %s: %v", c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

func (s *Server) handleChartPNG(c *gin.Context) {
	rep, err := s.loadReport(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	data, err := s.builder.RenderChart(rep, c.Param("chart"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", data)
}

func (s *Server) handleCompositePNG(c *gin.Context) {
	rep, err := s.loadReport(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if err := s.builder.Render(c.Request.Context(), rep); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="Institution_Charts.png"`)
	c.Data(http.StatusOK, "image/png", rep.Composite)
}

func (s *Server) handleWorkbook(c *gin.Context) {
	rep, err := s.loadReport(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteWorkbook(rep, &buf); err != nil {
		s.abortWithError(c, err)
		return
	}
	name := strings.TrimSuffix(rep.Source, ".xlsx")
	name = strings.TrimSuffix(name, ".csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-aggregates.xlsx"`, name))
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

func (s *Server) handleReportJSON(c *gin.Context) {
	rep, err := s.loadReport(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	body, err := json.Marshal(rep)
	if err != nil {
		s.abortWithError(c, errors.Wrap(err, "failed to encode report"))
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
