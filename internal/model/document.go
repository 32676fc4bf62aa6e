package model

import (
	"fmt"
	"strings"
	"time"
)

// DocumentCategory classifies a medical document.
type DocumentCategory string

const (
	CategoryLabReport          DocumentCategory = "LAB_REPORT"
	CategoryPrescription       DocumentCategory = "PRESCRIPTION"
	CategoryXRay               DocumentCategory = "X_RAY"
	CategoryMRIScan            DocumentCategory = "MRI_SCAN"
	CategoryCTScan             DocumentCategory = "CT_SCAN"
	CategoryUltrasound         DocumentCategory = "ULTRASOUND"
	CategoryECG                DocumentCategory = "ECG"
	CategoryBloodTest          DocumentCategory = "BLOOD_TEST"
	CategoryDischargeSummary   DocumentCategory = "DISCHARGE_SUMMARY"
	CategoryMedicalCertificate DocumentCategory = "MEDICAL_CERTIFICATE"
	CategoryVaccinationRecord  DocumentCategory = "VACCINATION_RECORD"
	CategoryAllergyReport      DocumentCategory = "ALLERGY_REPORT"
	CategorySurgicalReport     DocumentCategory = "SURGICAL_REPORT"
	CategoryConsultationNotes  DocumentCategory = "CONSULTATION_NOTES"
	CategoryOther              DocumentCategory = "OTHER"
)

var allCategories = []DocumentCategory{
	CategoryLabReport, CategoryPrescription, CategoryXRay,
	CategoryMRIScan, CategoryCTScan, CategoryUltrasound,
	CategoryECG, CategoryBloodTest, CategoryDischargeSummary,
	CategoryMedicalCertificate, CategoryVaccinationRecord,
	CategoryAllergyReport, CategorySurgicalReport,
	CategoryConsultationNotes, CategoryOther,
}

var validCategories = func() map[DocumentCategory]struct{} {
	m := make(map[DocumentCategory]struct{}, len(allCategories))
	for _, c := range allCategories {
		m[c] = struct{}{}
	}
	return m
}()

// DocumentCategories returns every known category in declaration order, for
// clients that populate upload forms.
func DocumentCategories() []DocumentCategory {
	out := make([]DocumentCategory, len(allCategories))
	copy(out, allCategories)
	return out
}

// ParseDocumentCategory validates a category string. An empty input maps to
// CategoryOther.
func ParseDocumentCategory(s string) (DocumentCategory, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return CategoryOther, nil
	}
	c := DocumentCategory(s)
	if _, ok := validCategories[c]; !ok {
		return "", fmt.Errorf("unknown document category: %q", s)
	}
	return c, nil
}

// Document is the metadata record for one uploaded medical file. The bytes
// live in object storage under StorageKey, which is assigned exactly once at
// upload and never reassigned. Public=false keeps the document visible to the
// owning patient, the uploader and admins only.
type Document struct {
	ID          string           `json:"id"`
	PatientID   string           `json:"patient_id"`
	UploadedBy  string           `json:"uploaded_by"`
	Filename    string           `json:"filename"`
	StorageKey  string           `json:"-"`
	Size        int64            `json:"size"`
	ContentType string           `json:"content_type"`
	Category    DocumentCategory `json:"category"`
	Description string           `json:"description"`
	Public      bool             `json:"public"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
