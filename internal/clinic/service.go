// Package clinic is the application layer between the request bridge and
// the data store. It validates and normalizes user input the way the intake
// forms do, logs every mutation, and composes printing from stored records.
package clinic

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/clinic/internal/document"
	"github.com/mesh-intelligence/clinic/internal/printer"
	"github.com/mesh-intelligence/clinic/internal/sheet"
	"github.com/mesh-intelligence/clinic/pkg/types"
)

// Store is the persistence the service needs. *sqlite.Store implements it.
type Store interface {
	AddPatient(ctx context.Context, in types.PatientInput) (int64, error)
	UpdatePatient(ctx context.Context, id int64, in types.PatientInput) (bool, error)
	DeletePatient(ctx context.Context, id int64) (bool, error)
	GetPatient(ctx context.Context, id int64) (types.Patient, error)
	SearchPatients(ctx context.Context, query string) ([]types.PatientSummary, error)

	SavePrescription(ctx context.Context, d types.PrescriptionDraft) (int64, error)
	GetPrescription(ctx context.Context, id int64) (types.Prescription, error)
	PrescriptionItems(ctx context.Context, prescriptionID int64) ([]types.PrescriptionItem, error)
	SaveCertificate(ctx context.Context, d types.CertificateDraft) (int64, error)
	GetCertificate(ctx context.Context, id int64) (types.Certificate, error)
	PatientHistory(ctx context.Context, patientID int64) ([]types.Visit, error)

	ListInventory(ctx context.Context) ([]types.InventoryItem, error)
	AddMedicine(ctx context.Context, item types.InventoryItem) (int64, error)
	UpdateMedicine(ctx context.Context, item types.InventoryItem) (bool, error)
	DeleteMedicine(ctx context.Context, id int64) (bool, error)
	BulkAddMedicines(ctx context.Context, names []string) (int, error)

	ListTemplates(ctx context.Context) ([]types.Template, error)
	SaveTemplate(ctx context.Context, t types.Template) (int64, bool, error)
	DeleteTemplate(ctx context.Context, id int64) (bool, error)

	Settings(ctx context.Context) (types.Settings, error)
	SaveSettings(ctx context.Context, values types.Settings) error
	DashboardStats(ctx context.Context) (types.DashboardStats, error)
	Export(ctx context.Context, dst string) (types.ExportResult, error)
}

// Printer sends a rendered page to the print path.
type Printer interface {
	Print(ctx context.Context, page []byte, paper string) (printer.Job, error)
}

// Service implements the clinic operations.
type Service struct {
	store   Store
	printer Printer
	log     zerolog.Logger
	now     func() time.Time
}

// New returns a Service over store. p may be nil, in which case print
// requests fail with printer.ErrPrintFailed.
func New(store Store, p Printer, log zerolog.Logger) *Service {
	return &Service{store: store, printer: p, log: log, now: time.Now}
}

// AddPatient validates and registers a patient.
func (s *Service) AddPatient(ctx context.Context, in types.PatientInput) (int64, error) {
	in, err := cleanPatient(in)
	if err != nil {
		return 0, err
	}
	id, err := s.store.AddPatient(ctx, in)
	if err != nil {
		s.log.Error().Err(err).Msg("add patient failed")
		return 0, err
	}
	s.log.Info().Int64("patient", id).Str("name", in.Name).Msg("patient added")
	return id, nil
}

// UpdatePatient validates and overwrites a patient's details.
func (s *Service) UpdatePatient(ctx context.Context, id int64, in types.PatientInput) (bool, error) {
	in, err := cleanPatient(in)
	if err != nil {
		return false, err
	}
	ok, err := s.store.UpdatePatient(ctx, id, in)
	if err != nil {
		s.log.Error().Err(err).Int64("patient", id).Msg("update patient failed")
		return false, err
	}
	s.log.Info().Int64("patient", id).Bool("found", ok).Msg("patient updated")
	return ok, nil
}

// DeletePatient removes a patient and everything issued to them.
func (s *Service) DeletePatient(ctx context.Context, id int64) (bool, error) {
	ok, err := s.store.DeletePatient(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Int64("patient", id).Msg("delete patient failed")
		return false, err
	}
	s.log.Info().Int64("patient", id).Bool("found", ok).Msg("patient deleted")
	return ok, nil
}

// GetPatient returns one patient.
func (s *Service) GetPatient(ctx context.Context, id int64) (types.Patient, error) {
	return s.store.GetPatient(ctx, id)
}

// SearchPatients lists patients matching query, most recently active first.
func (s *Service) SearchPatients(ctx context.Context, query string) ([]types.PatientSummary, error) {
	return s.store.SearchPatients(ctx, query)
}

// PatientHistory returns a patient's prescriptions and certificates, newest
// first.
func (s *Service) PatientHistory(ctx context.Context, patientID int64) ([]types.Visit, error) {
	return s.store.PatientHistory(ctx, patientID)
}

// SavePrescription validates and stores a prescription.
func (s *Service) SavePrescription(ctx context.Context, d types.PrescriptionDraft) (int64, error) {
	d, err := cleanDraft(d)
	if err != nil {
		return 0, err
	}
	id, err := s.store.SavePrescription(ctx, d)
	if err != nil {
		s.log.Error().Err(err).Int64("patient", d.PatientID).Msg("save prescription failed")
		return 0, err
	}
	s.log.Info().Int64("prescription", id).Int64("patient", d.PatientID).
		Int("medicines", len(d.Medicines)).Msg("prescription saved")
	return id, nil
}

// GetPrescription returns a prescription header.
func (s *Service) GetPrescription(ctx context.Context, id int64) (types.Prescription, error) {
	return s.store.GetPrescription(ctx, id)
}

// PrescriptionItems returns the medicine lines of a prescription.
func (s *Service) PrescriptionItems(ctx context.Context, prescriptionID int64) ([]types.PrescriptionItem, error) {
	return s.store.PrescriptionItems(ctx, prescriptionID)
}

// SaveCertificate validates and stores a medical certificate.
func (s *Service) SaveCertificate(ctx context.Context, d types.CertificateDraft) (int64, error) {
	d, err := cleanCertificate(d)
	if err != nil {
		return 0, err
	}
	id, err := s.store.SaveCertificate(ctx, d)
	if err != nil {
		s.log.Error().Err(err).Int64("patient", d.PatientID).Msg("save certificate failed")
		return 0, err
	}
	s.log.Info().Int64("certificate", id).Int64("patient", d.PatientID).Msg("certificate saved")
	return id, nil
}

// GetCertificate returns one certificate.
func (s *Service) GetCertificate(ctx context.Context, id int64) (types.Certificate, error) {
	return s.store.GetCertificate(ctx, id)
}

// ListInventory returns all known medicines.
func (s *Service) ListInventory(ctx context.Context) ([]types.InventoryItem, error) {
	return s.store.ListInventory(ctx)
}

// AddMedicine adds an inventory item; an existing name is rejected.
func (s *Service) AddMedicine(ctx context.Context, it types.InventoryItem) (int64, error) {
	it, err := cleanItem(it)
	if err != nil {
		return 0, err
	}
	id, err := s.store.AddMedicine(ctx, it)
	if err != nil {
		s.log.Error().Err(err).Str("medicine", it.Name).Msg("add medicine failed")
		return 0, err
	}
	s.log.Info().Int64("medicine", id).Str("name", it.Name).Msg("medicine added")
	return id, nil
}

// UpdateMedicine overwrites an inventory item.
func (s *Service) UpdateMedicine(ctx context.Context, it types.InventoryItem) (bool, error) {
	if it.ID <= 0 {
		return false, types.Invalid("id", "is required")
	}
	it, err := cleanItem(it)
	if err != nil {
		return false, err
	}
	ok, err := s.store.UpdateMedicine(ctx, it)
	if err != nil {
		s.log.Error().Err(err).Int64("medicine", it.ID).Msg("update medicine failed")
		return false, err
	}
	s.log.Info().Int64("medicine", it.ID).Bool("found", ok).Msg("medicine updated")
	return ok, nil
}

// DeleteMedicine removes an inventory item.
func (s *Service) DeleteMedicine(ctx context.Context, id int64) (bool, error) {
	ok, err := s.store.DeleteMedicine(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Int64("medicine", id).Msg("delete medicine failed")
		return false, err
	}
	s.log.Info().Int64("medicine", id).Bool("found", ok).Msg("medicine deleted")
	return ok, nil
}

// BulkAddMedicines adds every new name and returns how many were added.
func (s *Service) BulkAddMedicines(ctx context.Context, names []string) (int, error) {
	n, err := s.store.BulkAddMedicines(ctx, names)
	if err != nil {
		s.log.Error().Err(err).Int("names", len(names)).Msg("bulk add failed")
		return 0, err
	}
	s.log.Info().Int("names", len(names)).Int("added", n).Msg("medicines bulk added")
	return n, nil
}

// ImportInventory bulk-adds the medicine names in the first column of an
// .xlsx workbook.
func (s *Service) ImportInventory(ctx context.Context, r io.Reader) (int, error) {
	names, err := sheet.ReadMedicineNames(r)
	if err != nil {
		return 0, types.Invalid("file", "%v", err)
	}
	return s.BulkAddMedicines(ctx, names)
}

// ExportInventory writes the inventory to w as an .xlsx workbook.
func (s *Service) ExportInventory(ctx context.Context, w io.Writer) error {
	items, err := s.store.ListInventory(ctx)
	if err != nil {
		return err
	}
	return sheet.WriteInventory(w, items)
}

// ListTemplates returns all saved templates.
func (s *Service) ListTemplates(ctx context.Context) ([]types.Template, error) {
	return s.store.ListTemplates(ctx)
}

// SaveTemplate creates or updates a template. It reports false when an
// update targets a template that does not exist.
func (s *Service) SaveTemplate(ctx context.Context, t types.Template) (int64, bool, error) {
	t, err := cleanTemplate(t)
	if err != nil {
		return 0, false, err
	}
	id, found, err := s.store.SaveTemplate(ctx, t)
	if err != nil {
		s.log.Error().Err(err).Int64("template", t.ID).Msg("save template failed")
		return 0, false, err
	}
	s.log.Info().Int64("template", id).Str("name", t.Name).Bool("found", found).Msg("template saved")
	return id, found, nil
}

// DeleteTemplate removes a template.
func (s *Service) DeleteTemplate(ctx context.Context, id int64) (bool, error) {
	ok, err := s.store.DeleteTemplate(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Int64("template", id).Msg("delete template failed")
		return false, err
	}
	s.log.Info().Int64("template", id).Bool("found", ok).Msg("template deleted")
	return ok, nil
}

// Settings returns the stored clinic settings.
func (s *Service) Settings(ctx context.Context) (types.Settings, error) {
	return s.store.Settings(ctx)
}

// SaveSettings validates and upserts the given settings.
func (s *Service) SaveSettings(ctx context.Context, values types.Settings) error {
	values, err := cleanSettings(values)
	if err != nil {
		return err
	}
	if err := s.store.SaveSettings(ctx, values); err != nil {
		s.log.Error().Err(err).Msg("save settings failed")
		return err
	}
	s.log.Info().Int("keys", len(values)).Msg("settings saved")
	return nil
}

// DashboardStats returns the dashboard counters.
func (s *Service) DashboardStats(ctx context.Context) (types.DashboardStats, error) {
	return s.store.DashboardStats(ctx)
}

// Export copies the database to dst. An empty dst is a cancelled export.
func (s *Service) Export(ctx context.Context, dst string) (types.ExportResult, error) {
	res, err := s.store.Export(ctx, dst)
	if err != nil {
		s.log.Error().Err(err).Str("path", dst).Msg("export failed")
		return res, err
	}
	if res.Cancelled {
		s.log.Info().Msg("export cancelled")
		return res, nil
	}
	s.log.Info().Str("path", res.Path).Int64("bytes", res.Bytes).Msg("database exported")
	return res, nil
}

// RenderPrescription renders a stored prescription as it prints.
func (s *Service) RenderPrescription(ctx context.Context, id int64) ([]byte, types.Settings, error) {
	rx, err := s.store.GetPrescription(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.store.PrescriptionItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return s.renderPrescription(ctx, rx.PatientID, rx.Diagnosis, document.MedicinesFromItems(items), rx.Date)
}

// PreviewPrescription renders an unsaved draft as it would print now.
func (s *Service) PreviewPrescription(ctx context.Context, d types.PrescriptionDraft) ([]byte, error) {
	d, err := cleanDraft(d)
	if err != nil {
		return nil, err
	}
	page, _, err := s.renderPrescription(ctx, d.PatientID, d.Diagnosis, d.Medicines, s.now())
	return page, err
}

func (s *Service) renderPrescription(ctx context.Context, patientID int64, diagnosis string, meds []types.Medicine, at time.Time) ([]byte, types.Settings, error) {
	p, err := s.store.GetPatient(ctx, patientID)
	if err != nil {
		return nil, nil, err
	}
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	err = document.RenderPrescription(&buf, document.PrescriptionInput{
		Patient:   p,
		Diagnosis: diagnosis,
		Medicines: meds,
		IssuedAt:  at,
	}, settings)
	if err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), settings, nil
}

// RenderCertificate renders a stored certificate as it prints. residency is
// the optional place of residence or work printed after the name.
func (s *Service) RenderCertificate(ctx context.Context, id int64, residency string) ([]byte, types.Settings, error) {
	c, err := s.store.GetCertificate(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.store.GetPatient(ctx, c.PatientID)
	if err != nil {
		return nil, nil, err
	}
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	err = document.RenderCertificate(&buf, document.CertificateInput{
		Patient:   p,
		Diagnosis: c.Diagnosis,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		IssuedAt:  c.CreatedAt,
		Residency: residency,
	}, settings)
	if err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), settings, nil
}

// PrintPrescription renders a stored prescription and sends it to the
// printer on the configured paper size.
func (s *Service) PrintPrescription(ctx context.Context, id int64) (printer.Job, error) {
	page, settings, err := s.RenderPrescription(ctx, id)
	if err != nil {
		return printer.Job{}, err
	}
	return s.print(ctx, page, settings, "prescription", id)
}

// PrintCertificate renders a stored certificate and sends it to the printer.
func (s *Service) PrintCertificate(ctx context.Context, id int64, residency string) (printer.Job, error) {
	page, settings, err := s.RenderCertificate(ctx, id, residency)
	if err != nil {
		return printer.Job{}, err
	}
	return s.print(ctx, page, settings, "certificate", id)
}

func (s *Service) print(ctx context.Context, page []byte, settings types.Settings, kind string, id int64) (printer.Job, error) {
	if s.printer == nil {
		return printer.Job{}, printer.ErrPrintFailed
	}
	job, err := s.printer.Print(ctx, page, settings.PaperSize())
	if err != nil {
		s.log.Error().Err(err).Str("kind", kind).Int64("id", id).Msg("print failed")
		return job, err
	}
	s.log.Info().Str("kind", kind).Int64("id", id).Str("job", job.ID).Msg("print job submitted")
	return job, nil
}
