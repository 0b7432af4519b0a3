// Package jsonfile keeps patients in a single JSON document on disk.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"rehabDose/business/patient"
	"rehabDose/domain"
	"strconv"
	"sync"
	"time"
)

// patientRecord persists the model aliases that the API representation hides.
type patientRecord struct {
	domain.Patient
	BayesianAlias string `json:"bayesian_alias,omitempty"`
	BayesianURI   string `json:"bayesian_uri,omitempty"`
	SGLDAlias     string `json:"sgld_alias,omitempty"`
	SGLDURI       string `json:"sgld_uri,omitempty"`
}

func toRecord(p domain.Patient) patientRecord {
	return patientRecord{
		Patient:       p,
		BayesianAlias: p.BayesianAlias,
		BayesianURI:   p.BayesianURI,
		SGLDAlias:     p.SGLDAlias,
		SGLDURI:       p.SGLDURI,
	}
}

func (r patientRecord) toPatient() domain.Patient {
	p := r.Patient
	p.BayesianAlias = r.BayesianAlias
	p.BayesianURI = r.BayesianURI
	p.SGLDAlias = r.SGLDAlias
	p.SGLDURI = r.SGLDURI
	return p
}

type PatientRepository struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

var _ patient.PatientRepository = (*PatientRepository)(nil)

func NewPatientRepository(path string) *PatientRepository {
	return &PatientRepository{
		path: path,
		now:  time.Now,
	}
}

func (r *PatientRepository) load() ([]patientRecord, error) {
	blob, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []patientRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read patients file: %w", err)
	}
	if len(blob) == 0 {
		return []patientRecord{}, nil
	}

	var records []patientRecord
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, fmt.Errorf("failed to decode patients file: %w", err)
	}
	return records, nil
}

func (r *PatientRepository) save(records []patientRecord) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	blob, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode patients: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return fmt.Errorf("failed to write patients file: %w", err)
	}
	return os.Rename(tmp, r.path)
}

func indexOf(records []patientRecord, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *PatientRepository) NextID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return "", err
	}

	for n := len(records) + 1; ; n++ {
		id := strconv.Itoa(n)
		if indexOf(records, id) < 0 {
			return id, nil
		}
	}
}

func (r *PatientRepository) Create(ctx context.Context, p *domain.Patient) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	if indexOf(records, p.ID) >= 0 {
		return fmt.Errorf("patient %s already exists", p.ID)
	}

	now := r.now()
	p.CreatedAt = now
	p.UpdatedAt = now

	return r.save(append(records, toRecord(*p)))
}

func (r *PatientRepository) FindByID(ctx context.Context, id string) (domain.Patient, error) {
	if err := ctx.Err(); err != nil {
		return domain.Patient{}, fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return domain.Patient{}, err
	}

	idx := indexOf(records, id)
	if idx < 0 {
		return domain.Patient{}, domain.ErrPatientNotFound
	}
	return records[idx].toPatient(), nil
}

func (r *PatientRepository) FindAll(ctx context.Context) ([]domain.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}

	patients := make([]domain.Patient, 0, len(records))
	for _, rec := range records {
		patients = append(patients, rec.toPatient())
	}
	return patients, nil
}

func (r *PatientRepository) Update(ctx context.Context, p *domain.Patient) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}

	idx := indexOf(records, p.ID)
	if idx < 0 {
		return domain.ErrPatientNotFound
	}

	p.CreatedAt = records[idx].CreatedAt
	p.UpdatedAt = r.now()
	records[idx] = toRecord(*p)

	return r.save(records)
}

func (r *PatientRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}

	idx := indexOf(records, id)
	if idx < 0 {
		return domain.ErrPatientNotFound
	}

	return r.save(append(records[:idx], records[idx+1:]...))
}
