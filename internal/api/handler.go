// Package api exposes the clinic service to the local UI over HTTP. Reads
// return plain JSON; mutations return a Result envelope whose success flag
// and error text mirror what the desktop screens expect.
package api

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/clinic/internal/clinic"
	"github.com/mesh-intelligence/clinic/internal/sqlite"
	"github.com/mesh-intelligence/clinic/pkg/types"
)

// xlsxMIME is the content type of exported inventory workbooks.
const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves the clinic endpoints.
type Handler struct {
	svc *clinic.Service
	now func() time.Time
}

func NewHandler(svc *clinic.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

// NewServer returns an Echo instance with logging, panic recovery, and the
// clinic routes mounted under /api.
func NewServer(h *Handler, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(Logger(logger), Recovery(logger))
	h.RegisterRoutes(e.Group("/api"))
	return e
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/patients", h.SearchPatients)
	g.POST("/patients", h.AddPatient)
	g.GET("/patients/:id", h.GetPatient)
	g.PUT("/patients/:id", h.UpdatePatient)
	g.DELETE("/patients/:id", h.DeletePatient)
	g.GET("/patients/:id/history", h.PatientHistory)

	g.POST("/prescriptions", h.SavePrescription)
	g.POST("/prescriptions/preview", h.PreviewPrescription)
	g.GET("/prescriptions/:id", h.GetPrescription)
	g.GET("/prescriptions/:id/items", h.PrescriptionItems)
	g.GET("/prescriptions/:id/document", h.PrescriptionDocument)
	g.POST("/prescriptions/:id/print", h.PrintPrescription)

	g.POST("/certificates", h.SaveCertificate)
	g.GET("/certificates/:id", h.GetCertificate)
	g.GET("/certificates/:id/document", h.CertificateDocument)
	g.POST("/certificates/:id/print", h.PrintCertificate)

	g.GET("/inventory", h.ListInventory)
	g.POST("/inventory", h.AddMedicine)
	g.PUT("/inventory/:id", h.UpdateMedicine)
	g.DELETE("/inventory/:id", h.DeleteMedicine)
	g.POST("/inventory/bulk", h.BulkAddMedicines)
	g.POST("/inventory/import", h.ImportInventory)
	g.GET("/inventory/export", h.ExportInventory)

	g.GET("/templates", h.ListTemplates)
	g.POST("/templates", h.SaveTemplate)
	g.PUT("/templates/:id", h.SaveTemplate)
	g.DELETE("/templates/:id", h.DeleteTemplate)

	g.GET("/dashboard", h.DashboardStats)
	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.SaveSettings)
	g.GET("/backup/name", h.BackupName)
	g.POST("/backup", h.Backup)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, types.ErrInvalidID
	}
	return id, nil
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, Result{Error: err.Error()})
}

// -- Patients --

func (h *Handler) SearchPatients(c echo.Context) error {
	results, err := h.svc.SearchPatients(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, results)
}

func (h *Handler) AddPatient(c echo.Context) error {
	var in types.PatientInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, err)
	}
	id, err := h.svc.AddPatient(c.Request().Context(), in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, Result{ID: id})
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var in types.PatientInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, err)
	}
	found, err := h.svc.UpdatePatient(c.Request().Context(), id, in)
	if err != nil {
		return fail(c, err)
	}
	if !found {
		return notFound(c)
	}
	return ok(c, Result{ID: id})
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	found, err := h.svc.DeletePatient(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if !found {
		return notFound(c)
	}
	return ok(c, Result{ID: id})
}

func (h *Handler) PatientHistory(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	visits, err := h.svc.PatientHistory(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, visits)
}

// -- Prescriptions and certificates --

// SavePrescription stores a prescription. With ?print=true the saved
// prescription is also printed; a print failure does not undo the save and
// is reported in printError.
func (h *Handler) SavePrescription(c echo.Context) error {
	var d types.PrescriptionDraft
	if err := c.Bind(&d); err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	id, err := h.svc.SavePrescription(ctx, d)
	if err != nil {
		return fail(c, err)
	}
	res := Result{ID: id}
	if c.QueryParam("print") == "true" {
		job, err := h.svc.PrintPrescription(ctx, id)
		if err != nil {
			res.PrintError = err.Error()
		} else {
			res.Job = &job
		}
	}
	return ok(c, res)
}

func (h *Handler) PreviewPrescription(c echo.Context) error {
	var d types.PrescriptionDraft
	if err := c.Bind(&d); err != nil {
		return badRequest(c, err)
	}
	page, err := h.svc.PreviewPrescription(c.Request().Context(), d)
	if err != nil {
		return fail(c, err)
	}
	return c.HTMLBlob(http.StatusOK, page)
}

// prescriptionDetails is a prescription header with its items.
type prescriptionDetails struct {
	types.Prescription
	Items []types.PrescriptionItem `json:"items"`
}

func (h *Handler) GetPrescription(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx := c.Request().Context()
	rx, err := h.svc.GetPrescription(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	items, err := h.svc.PrescriptionItems(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, prescriptionDetails{Prescription: rx, Items: items})
}

func (h *Handler) PrescriptionItems(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	items, err := h.svc.PrescriptionItems(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) PrescriptionDocument(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	page, _, err := h.svc.RenderPrescription(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.HTMLBlob(http.StatusOK, page)
}

func (h *Handler) PrintPrescription(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	job, err := h.svc.PrintPrescription(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, Result{ID: id, Job: &job})
}

// certificateRequest is a certificate draft with the print-only residency
// line.
type certificateRequest struct {
	types.CertificateDraft
	Residency string `json:"residency"`
}

// SaveCertificate stores a certificate, printing it too with ?print=true.
func (h *Handler) SaveCertificate(c echo.Context) error {
	var req certificateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	id, err := h.svc.SaveCertificate(ctx, req.CertificateDraft)
	if err != nil {
		return fail(c, err)
	}
	res := Result{ID: id}
	if c.QueryParam("print") == "true" {
		job, err := h.svc.PrintCertificate(ctx, id, req.Residency)
		if err != nil {
			res.PrintError = err.Error()
		} else {
			res.Job = &job
		}
	}
	return ok(c, res)
}

func (h *Handler) GetCertificate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	cert, err := h.svc.GetCertificate(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cert)
}

func (h *Handler) CertificateDocument(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	page, _, err := h.svc.RenderCertificate(c.Request().Context(), id, c.QueryParam("residency"))
	if err != nil {
		return fail(c, err)
	}
	return c.HTMLBlob(http.StatusOK, page)
}

func (h *Handler) PrintCertificate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req struct {
		Residency string `json:"residency"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	job, err := h.svc.PrintCertificate(c.Request().Context(), id, req.Residency)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, Result{ID: id, Job: &job})
}

// -- Inventory --

func (h *Handler) ListInventory(c echo.Context) error {
	items, err := h.svc.ListInventory(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) AddMedicine(c echo.Context) error {
	var it types.InventoryItem
	if err := c.Bind(&it); err != nil {
		return badRequest(c, err)
	}
	id, err := h.svc.AddMedicine(c.Request().Context(), it)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, Result{ID: id})
}

func (h *Handler) UpdateMedicine(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var it types.InventoryItem
	if err := c.Bind(&it); err != nil {
		return badRequest(c, err)
	}
	it.ID = id
	found, err := h.svc.UpdateMedicine(c.Request().Context(), it)
	if err != nil {
		return fail(c, err)
	}
	if !found {
		return notFound(c)
	}
	return ok(c, Result{ID: id})
}

func (h *Handler) DeleteMedicine(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	found, err := h.svc.DeleteMedicine(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if !found {
		return notFound(c)
	}
	return ok(c, Result{ID: id})
}

func (h *Handler) BulkAddMedicines(c echo.Context) error {
	var req struct {
		Names []string `json:"names"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	n, err := h.svc.BulkAddMedicines(c.Request().Context(), req.Names)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, Result{Count: &n})
}

// ImportInventory reads the multipart "file" field as an .xlsx workbook.
func (h *Handler) ImportInventory(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, err)
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, err)
	}
	defer f.Close()

	n, err := h.svc.ImportInventory(c.Request().Context(), f)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, Result{Count: &n})
}

func (h *Handler) ExportInventory(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.svc.ExportInventory(c.Request().Context(), &buf); err != nil {
		return fail(c, err)
	}
	name := "Inventory_" + h.now().Format(types.DateLayout) + ".xlsx"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

// -- Templates --

func (h *Handler) ListTemplates(c echo.Context) error {
	list, err := h.svc.ListTemplates(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// SaveTemplate creates a template on POST and updates one on PUT.
func (h *Handler) SaveTemplate(c echo.Context) error {
	var t types.Template
	if err := c.Bind(&t); err != nil {
		return badRequest(c, err)
	}
	t.ID = 0
	if c.Param("id") != "" {
		id, err := parseID(c)
		if err != nil {
			return fail(c, err)
		}
		t.ID = id
	}
	id, found, err := h.svc.SaveTemplate(c.Request().Context(), t)
	if err != nil {
		return fail(c, err)
	}
	if !found {
		return notFound(c)
	}
	return ok(c, Result{ID: id})
}

func (h *Handler) DeleteTemplate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	found, err := h.svc.DeleteTemplate(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if !found {
		return notFound(c)
	}
	return ok(c, Result{ID: id})
}

// -- Dashboard, settings, backup --

func (h *Handler) DashboardStats(c echo.Context) error {
	stats, err := h.svc.DashboardStats(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetSettings(c echo.Context) error {
	s, err := h.svc.Settings(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) SaveSettings(c echo.Context) error {
	var s types.Settings
	if err := c.Bind(&s); err != nil {
		return badRequest(c, err)
	}
	if err := h.svc.SaveSettings(c.Request().Context(), s); err != nil {
		return fail(c, err)
	}
	return ok(c, Result{})
}

// Backup exports the database to the requested path. An empty path is the
// cancelled outcome: success is false, cancelled is true, and there is no
// error.
func (h *Handler) Backup(c echo.Context) error {
	var req struct {
		Path string `json:"path"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	res, err := h.svc.Export(c.Request().Context(), req.Path)
	if err != nil {
		return fail(c, err)
	}
	if res.Cancelled {
		return c.JSON(http.StatusOK, Result{Cancelled: true})
	}
	return ok(c, Result{Path: res.Path})
}

// BackupName suggests a file name for a backup taken now.
func (h *Handler) BackupName(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"name": sqlite.DefaultBackupName(h.now())})
}
