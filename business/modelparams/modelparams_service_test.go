//go:build !integration

package modelparams

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"rehabDose/domain"
)

type mockParamRepo struct {
	sets map[string][]domain.ModelParamSet

	FindByPatientFunc func(ctx context.Context, patientID string) ([]domain.ModelParamSet, error)
}

func newMockParamRepo() *mockParamRepo {
	return &mockParamRepo{sets: map[string][]domain.ModelParamSet{}}
}

func (m *mockParamRepo) FindByPatient(ctx context.Context, patientID string) ([]domain.ModelParamSet, error) {
	if m.FindByPatientFunc != nil {
		return m.FindByPatientFunc(ctx, patientID)
	}
	return m.sets[patientID], nil
}

func (m *mockParamRepo) ReplaceForPatient(ctx context.Context, patientID string, sets []domain.ModelParamSet) error {
	m.sets[patientID] = sets
	return nil
}

func isRounded(v float64) bool {
	return math.Abs(v*1000-math.Round(v*1000)) < 1e-6
}

func TestSeedDefaults_PerturbsAroundDefaults(t *testing.T) {
	repo := newMockParamRepo()
	svc := NewParamService(repo, 5, WithRand(rand.New(rand.NewSource(1))))

	if err := svc.SeedDefaults(context.Background(), "1", "1_Patient_Jane_bayes_version_1"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	sets := repo.sets["1"]
	if len(sets) != 5 {
		t.Fatalf("expected 5 iterations, got %d", len(sets))
	}

	def := domain.DefaultModelParameters()
	if sets[0].Params.Data() != def {
		t.Errorf("iteration 0 should be the base params, got %+v", sets[0].Params.Data())
	}

	for i, set := range sets {
		if set.Iteration != i || set.ModelID != "1_Patient_Jane_bayes_version_1" {
			t.Errorf("unexpected iteration metadata %+v", set)
		}
		p := set.Params.Data()
		for name, pair := range map[string][2]float64{
			"a": {p.A, def.A},
			"b": {p.B, def.B},
			"c": {p.C, def.C},
		} {
			if math.Abs(pair[0]-pair[1]) > defaultMaxDiff+1e-9 {
				t.Errorf("iteration %d: %s=%v drifted more than %v from %v", i, name, pair[0], defaultMaxDiff, pair[1])
			}
			if !isRounded(pair[0]) {
				t.Errorf("iteration %d: %s=%v not rounded to 3 decimals", i, name, pair[0])
			}
		}
		if p.NoiseScale != def.NoiseScale || p.SigSlope != def.SigSlope || p.SigOffset != def.SigOffset {
			t.Errorf("iteration %d: only a, b and c should be perturbed, got %+v", i, p)
		}
	}
}

func TestRegenerate_NilBaseReusesFirstIteration(t *testing.T) {
	repo := newMockParamRepo()
	base := domain.DefaultModelParameters()
	base.A = 0.5
	repo.sets["1"] = []domain.ModelParamSet{domain.NewModelParamSet("1", "old", 0, base)}

	svc := NewParamService(repo, 3, WithRand(rand.New(rand.NewSource(2))))

	sets, err := svc.Regenerate(context.Background(), "1", "new", nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(sets) != 3 {
		t.Fatalf("expected 3 iterations, got %d", len(sets))
	}
	if sets[0].Params.Data().A != 0.5 || sets[0].ModelID != "new" {
		t.Errorf("expected base a=0.5 under the new model id, got %+v", sets[0])
	}
}

func TestWithMaxDiffZero_CopiesBase(t *testing.T) {
	repo := newMockParamRepo()
	svc := NewParamService(repo, 4, WithMaxDiff(0))

	if err := svc.SeedDefaults(context.Background(), "1", "m"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for _, set := range repo.sets["1"] {
		if set.Params.Data() != domain.DefaultModelParameters() {
			t.Errorf("expected exact copy, got %+v", set.Params.Data())
		}
	}
}

func TestGetParamSets_DefaultsWhenEmpty(t *testing.T) {
	svc := NewParamService(newMockParamRepo(), 5)

	params, err := svc.GetParamSets(context.Background(), "1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(params) != 1 || params[0] != domain.DefaultModelParameters() {
		t.Errorf("expected single default set, got %+v", params)
	}
}

func TestGetRandomParams(t *testing.T) {
	repo := newMockParamRepo()
	svc := NewParamService(repo, 5, WithRand(rand.New(rand.NewSource(3))))

	if _, ok, err := svc.GetRandomParams(context.Background(), "1"); err != nil || ok {
		t.Fatalf("expected no params and no error, got ok=%v err=%v", ok, err)
	}

	if err := svc.SeedDefaults(context.Background(), "1", "m"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	stored := map[domain.ModelParameters]bool{}
	for _, set := range repo.sets["1"] {
		stored[set.Params.Data()] = true
	}

	for i := 0; i < 20; i++ {
		p, ok, err := svc.GetRandomParams(context.Background(), "1")
		if err != nil || !ok {
			t.Fatalf("expected params, got ok=%v err=%v", ok, err)
		}
		if !stored[p] {
			t.Errorf("returned params %+v are not a stored iteration", p)
		}
	}
}

func TestSetParams_OverwritesAllIterations(t *testing.T) {
	repo := newMockParamRepo()
	svc := NewParamService(repo, 4, WithRand(rand.New(rand.NewSource(4))))
	if err := svc.SeedDefaults(context.Background(), "1", "m"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := domain.DefaultModelParameters()
	want.C = 2.2
	sets, err := svc.SetParams(context.Background(), "1", want)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(sets) != 4 {
		t.Fatalf("expected iteration count to be preserved, got %d", len(sets))
	}
	for _, set := range repo.sets["1"] {
		if set.Params.Data() != want || set.ModelID != "m" {
			t.Errorf("unexpected iteration %+v", set)
		}
	}
}

func TestGetStoredSets_NoParams(t *testing.T) {
	svc := NewParamService(newMockParamRepo(), 5)

	if _, err := svc.GetStoredSets(context.Background(), "1"); !errors.Is(err, domain.ErrNoParams) {
		t.Errorf("expected ErrNoParams, got %v", err)
	}
}

func TestRepositoryError(t *testing.T) {
	repo := newMockParamRepo()
	repo.FindByPatientFunc = func(ctx context.Context, patientID string) ([]domain.ModelParamSet, error) {
		return nil, errors.New("connection refused")
	}
	svc := NewParamService(repo, 5)

	if _, err := svc.GetParamSets(context.Background(), "1"); err == nil {
		t.Error("expected repository error to surface")
	}
	if _, _, err := svc.GetRandomParams(context.Background(), "1"); err == nil {
		t.Error("expected repository error to surface")
	}
}

type mockPatients struct {
	ids map[string]bool
}

func (m *mockPatients) FindByID(ctx context.Context, id string) (domain.Patient, error) {
	if !m.ids[id] {
		return domain.Patient{}, domain.ErrPatientNotFound
	}
	return domain.Patient{ID: id}, nil
}

type mockInvalidator struct {
	invalidated []string
}

func (m *mockInvalidator) Invalidate(ctx context.Context, patientID string) error {
	m.invalidated = append(m.invalidated, patientID)
	return nil
}

func TestWrites_RejectUnknownPatient(t *testing.T) {
	repo := newMockParamRepo()
	svc := NewParamService(repo, 3, WithPatients(&mockPatients{ids: map[string]bool{"1": true}}))

	if _, err := svc.SetParams(context.Background(), "9", domain.DefaultModelParameters()); !errors.Is(err, domain.ErrPatientNotFound) {
		t.Errorf("SetParams: expected ErrPatientNotFound, got %v", err)
	}
	if _, err := svc.Regenerate(context.Background(), "9", "m", nil); !errors.Is(err, domain.ErrPatientNotFound) {
		t.Errorf("Regenerate: expected ErrPatientNotFound, got %v", err)
	}
	if _, ok := repo.sets["9"]; ok {
		t.Error("no rows should be written for an unknown patient")
	}

	if _, err := svc.Regenerate(context.Background(), "1", "m", nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(repo.sets["1"]) != 3 {
		t.Errorf("expected 3 iterations, got %d", len(repo.sets["1"]))
	}
}

func TestWrites_InvalidateCachedRecommendation(t *testing.T) {
	inv := &mockInvalidator{}
	svc := NewParamService(newMockParamRepo(), 3, WithInvalidator(inv))

	if _, err := svc.Regenerate(context.Background(), "1", "m", nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := svc.SetParams(context.Background(), "1", domain.DefaultModelParameters()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if want := []string{"1", "1"}; len(inv.invalidated) != 2 || inv.invalidated[0] != want[0] || inv.invalidated[1] != want[1] {
		t.Errorf("expected invalidations %v, got %v", want, inv.invalidated)
	}
}

func TestDeleteForPatient(t *testing.T) {
	repo := newMockParamRepo()
	svc := NewParamService(repo, 3)
	if err := svc.SeedDefaults(context.Background(), "1", "m"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := svc.DeleteForPatient(context.Background(), "1"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := svc.GetStoredSets(context.Background(), "1"); !errors.Is(err, domain.ErrNoParams) {
		t.Errorf("expected ErrNoParams after delete, got %v", err)
	}
}
