package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/phc-health/phc-engine/pkg/apperrors"
	"github.com/phc-health/phc-engine/pkg/models"
	"github.com/phc-health/phc-engine/pkg/repositories"
)

// In-memory repository fakes shared by the service tests.

type fakeUserRepo struct {
	byEmail   map[string]*models.User
	created   []*models.User
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*models.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.byEmail[user.Email]; exists {
		return apperrors.ErrConflict
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.byEmail[user.Email] = user
	f.created = append(f.created, user)
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) ListByTenant(_ context.Context, tenantID uuid.UUID, roles []string) ([]models.User, error) {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	var users []models.User
	for _, u := range f.byEmail {
		if u.TenantID == nil || *u.TenantID != tenantID {
			continue
		}
		if _, ok := allowed[u.Role]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

type fakeTenantRepo struct {
	byID     map[uuid.UUID]*models.Tenant
	bySlug   map[string]*models.Tenant
	statuses map[uuid.UUID]string
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{
		byID:     make(map[uuid.UUID]*models.Tenant),
		bySlug:   make(map[string]*models.Tenant),
		statuses: make(map[uuid.UUID]string),
	}
}

func (f *fakeTenantRepo) add(t *models.Tenant) *models.Tenant {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	f.byID[t.ID] = t
	f.bySlug[t.Slug] = t
	return t
}

func (f *fakeTenantRepo) Create(_ context.Context, t *models.Tenant) error {
	if _, exists := f.bySlug[t.Slug]; exists {
		return apperrors.ErrConflict
	}
	f.add(t)
	return nil
}

func (f *fakeTenantRepo) GetBySlug(_ context.Context, slug string) (*models.Tenant, error) {
	t, ok := f.bySlug[slug]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return t, nil
}

func (f *fakeTenantRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return t, nil
}

func (f *fakeTenantRepo) List(_ context.Context) ([]models.Tenant, error) {
	var tenants []models.Tenant
	for _, t := range f.byID {
		tenants = append(tenants, *t)
	}
	return tenants, nil
}

func (f *fakeTenantRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	t, ok := f.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	t.Status = status
	f.statuses[id] = status
	return nil
}

type fakePatientRepo struct {
	byID       map[uuid.UUID]*models.Patient
	byHealthID map[string]*models.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{
		byID:       make(map[uuid.UUID]*models.Patient),
		byHealthID: make(map[string]*models.Patient),
	}
}

func (f *fakePatientRepo) Create(_ context.Context, p *models.Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.byID[p.ID] = p
	if p.HealthID != nil {
		f.byHealthID[*p.HealthID] = p
	}
	return nil
}

func (f *fakePatientRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Patient, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func (f *fakePatientRepo) FindByHealthID(_ context.Context, healthID string) (*models.Patient, error) {
	p, ok := f.byHealthID[healthID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func (f *fakePatientRepo) UpdateHealthID(_ context.Context, id uuid.UUID, healthID string) error {
	p, ok := f.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if other, taken := f.byHealthID[healthID]; taken && other.ID != id {
		return apperrors.ErrConflict
	}
	if p.HealthID != nil {
		delete(f.byHealthID, *p.HealthID)
	}
	p.HealthID = &healthID
	f.byHealthID[healthID] = p
	return nil
}

func (f *fakePatientRepo) List(_ context.Context) ([]models.Patient, error) {
	var patients []models.Patient
	for _, p := range f.byID {
		patients = append(patients, *p)
	}
	return patients, nil
}

func (f *fakePatientRepo) Stats(_ context.Context) (*models.PatientStats, error) {
	return &models.PatientStats{TotalPatients: len(f.byID)}, nil
}

type fakeRegistryRepo struct {
	entries   map[string]*models.RegistryEntry
	createErr error
}

func newFakeRegistryRepo() *fakeRegistryRepo {
	return &fakeRegistryRepo{entries: make(map[string]*models.RegistryEntry)}
}

func (f *fakeRegistryRepo) Create(_ context.Context, entry *models.RegistryEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.entries[entry.HealthID]; exists {
		return apperrors.ErrRegistryConflict
	}
	f.entries[entry.HealthID] = entry
	return nil
}

func (f *fakeRegistryRepo) GetByHealthID(_ context.Context, healthID string) (*models.RegistryEntry, error) {
	entry, ok := f.entries[healthID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return entry, nil
}

func (f *fakeRegistryRepo) UpdateHealthID(_ context.Context, tenantID, patientID uuid.UUID, newHealthID string) error {
	if other, taken := f.entries[newHealthID]; taken && (other.TenantID != tenantID || other.PatientID != patientID) {
		return apperrors.ErrRegistryConflict
	}
	for old, entry := range f.entries {
		if entry.TenantID == tenantID && entry.PatientID == patientID {
			delete(f.entries, old)
			entry.HealthID = newHealthID
			f.entries[newHealthID] = entry
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type fakeVitalsRepo struct {
	created []*models.Vitals
}

func (f *fakeVitalsRepo) Create(_ context.Context, v *models.Vitals) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	f.created = append(f.created, v)
	return nil
}

func (f *fakeVitalsRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]models.Vitals, error) {
	var vitals []models.Vitals
	for _, v := range f.created {
		if v.PatientID == patientID {
			vitals = append(vitals, *v)
		}
	}
	return vitals, nil
}

type fakeConsultationRepo struct {
	byID map[uuid.UUID]*models.Consultation
}

func newFakeConsultationRepo() *fakeConsultationRepo {
	return &fakeConsultationRepo{byID: make(map[uuid.UUID]*models.Consultation)}
}

func (f *fakeConsultationRepo) Create(_ context.Context, c *models.Consultation) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = models.ConsultationPending
	}
	f.byID[c.ID] = c
	return nil
}

func (f *fakeConsultationRepo) UpdateDiagnosis(_ context.Context, id uuid.UUID, diagnosis, prescription *string, status string) (*models.Consultation, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c.Diagnosis = diagnosis
	c.Prescription = prescription
	c.Status = status
	return c, nil
}

func (f *fakeConsultationRepo) List(_ context.Context, filter repositories.ConsultationFilter) ([]models.Consultation, error) {
	var consultations []models.Consultation
	for _, c := range f.byID {
		if filter.PatientID != nil && c.PatientID != *filter.PatientID {
			continue
		}
		if filter.DoctorID != nil && c.DoctorID != *filter.DoctorID {
			continue
		}
		consultations = append(consultations, *c)
	}
	return consultations, nil
}

func (f *fakeConsultationRepo) Stats(_ context.Context) (*models.ConsultationStats, error) {
	stats := &models.ConsultationStats{}
	for _, c := range f.byID {
		if c.Status == models.ConsultationPending {
			stats.PendingConsultations++
		}
	}
	return stats, nil
}

type fakeMedicineRepo struct {
	medicines map[string]*models.Medicine
	batches   map[uuid.UUID][]models.Batch
}

func newFakeMedicineRepo() *fakeMedicineRepo {
	return &fakeMedicineRepo{
		medicines: make(map[string]*models.Medicine),
		batches:   make(map[uuid.UUID][]models.Batch),
	}
}

func (f *fakeMedicineRepo) CreateMedicine(_ context.Context, m *models.Medicine) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.LowStockThreshold == 0 {
		m.LowStockThreshold = 10
	}
	f.medicines[m.Name] = m
	return nil
}

func (f *fakeMedicineRepo) FindMedicineByName(_ context.Context, name string) (*models.Medicine, error) {
	m, ok := f.medicines[name]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return m, nil
}

func (f *fakeMedicineRepo) CreateBatch(_ context.Context, b *models.Batch) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	f.batches[b.MedicineID] = append(f.batches[b.MedicineID], *b)
	return nil
}

func (f *fakeMedicineRepo) ListInventory(_ context.Context) ([]models.MedicineInventory, error) {
	var inventory []models.MedicineInventory
	for _, m := range f.medicines {
		item := models.MedicineInventory{Medicine: *m, Batches: f.batches[m.ID]}
		item.ComputeStock()
		inventory = append(inventory, item)
	}
	return inventory, nil
}
