package dossier

import (
	"reflect"
	"testing"

	"github.com/MouctarBahLk/soorocampus-sub001/app/models"
)

const testCampaignYear = 2025

func doc(t models.DocumentType, subType string) *models.Document {
	return &models.Document{Type: t, SubType: subType, Status: models.DocumentPending}
}

func baseDocs() []*models.Document {
	return []*models.Document{
		doc(models.DocPhotoIdentite, ""),
		doc(models.DocCV, ""),
		doc(models.DocPasseport, ""),
	}
}

func TestEvaluate_TerminaleComplete(t *testing.T) {
	docs := append(baseDocs(),
		doc(models.DocReleveNotes, "attestation_terminale"),
		doc(models.DocReleveNotes, "bulletin_12eme"),
		doc(models.DocReleveNotes, "bulletin_11eme"),
	)

	verdict := Evaluate(docs, true, testCampaignYear)
	if !verdict.Complete {
		t.Fatalf("expected complete dossier, breakdown: %v", verdict.Breakdown)
	}
	for req, ok := range verdict.Breakdown {
		if !ok {
			t.Errorf("requirement %s unexpectedly unsatisfied", req)
		}
	}
	if _, hasDiplome := verdict.Breakdown[ReqDiplome]; hasDiplome {
		t.Error("terminale track must not require a diplome")
	}
}

func TestEvaluate_TerminaleMissingOneBulletin(t *testing.T) {
	docs := append(baseDocs(),
		doc(models.DocReleveNotes, "attestation_terminale"),
		doc(models.DocReleveNotes, "bulletin_12eme"),
	)

	verdict := Evaluate(docs, true, testCampaignYear)
	if verdict.Complete {
		t.Fatal("expected incomplete dossier with only one bulletin")
	}
	if verdict.Breakdown[ReqReleveNotes] {
		t.Error("transcript bundle should be unsatisfied")
	}
	for _, req := range []string{ReqPhotoIdentite, ReqCV, ReqPasseport} {
		if !verdict.Breakdown[req] {
			t.Errorf("requirement %s should still be satisfied", req)
		}
	}
}

func TestEvaluate_TranscriptDedup(t *testing.T) {
	// The same bulletin uploaded three times counts as one distinct sub-type.
	docs := append(baseDocs(),
		doc(models.DocReleveNotes, "attestation_terminale"),
		doc(models.DocReleveNotes, "bulletin_12eme"),
		doc(models.DocReleveNotes, "bulletin_12eme"),
		doc(models.DocReleveNotes, "bulletin_12eme"),
	)

	verdict := Evaluate(docs, true, testCampaignYear)
	if verdict.Complete {
		t.Fatal("duplicate bulletins must not satisfy the bundle minimum")
	}
	if verdict.Breakdown[ReqReleveNotes] {
		t.Error("transcript bundle should require two distinct bulletins")
	}
}

func TestEvaluate_PostBacComplete(t *testing.T) {
	docs := append(baseDocs(),
		doc(models.DocDiplome, ""),
		doc(models.DocReleveNotes, "attestation_2025"),
		doc(models.DocReleveNotes, "releve_2024"),
		doc(models.DocReleveNotes, "releve_2023"),
		doc(models.DocReleveNotes, "releve_2022"),
	)

	verdict := Evaluate(docs, false, testCampaignYear)
	if !verdict.Complete {
		t.Fatalf("expected complete post-bac dossier, breakdown: %v", verdict.Breakdown)
	}
}

func TestEvaluate_PostBacMissingYear(t *testing.T) {
	docs := append(baseDocs(),
		doc(models.DocDiplome, ""),
		doc(models.DocReleveNotes, "attestation_2025"),
		doc(models.DocReleveNotes, "releve_2024"),
		doc(models.DocReleveNotes, "releve_2023"),
	)

	verdict := Evaluate(docs, false, testCampaignYear)
	if verdict.Complete {
		t.Fatal("expected incomplete dossier with a missing yearly releve")
	}
	if verdict.Breakdown[ReqReleveNotes] {
		t.Error("transcript bundle should be unsatisfied")
	}
}

func TestEvaluate_EmptySet(t *testing.T) {
	for _, isTerminale := range []bool{true, false} {
		verdict := Evaluate(nil, isTerminale, testCampaignYear)
		if verdict.Complete {
			t.Errorf("empty set must be incomplete (terminale=%v)", isTerminale)
		}
		for req, ok := range verdict.Breakdown {
			if ok {
				t.Errorf("requirement %s satisfied on empty set (terminale=%v)", req, isTerminale)
			}
		}
	}
}

func TestEvaluate_CompleteIsConjunctionOfBreakdown(t *testing.T) {
	// complete must equal the AND over the breakdown: no hidden requirement,
	// no ignored one.
	cases := [][]*models.Document{
		nil,
		baseDocs(),
		append(baseDocs(), doc(models.DocDiplome, "")),
		append(baseDocs(),
			doc(models.DocDiplome, ""),
			doc(models.DocReleveNotes, "attestation_2025"),
			doc(models.DocReleveNotes, "releve_2024"),
			doc(models.DocReleveNotes, "releve_2023"),
			doc(models.DocReleveNotes, "releve_2022"),
		),
	}
	for i, docs := range cases {
		for _, isTerminale := range []bool{true, false} {
			verdict := Evaluate(docs, isTerminale, testCampaignYear)
			all := true
			for _, ok := range verdict.Breakdown {
				all = all && ok
			}
			if verdict.Complete != all {
				t.Errorf("case %d (terminale=%v): complete=%v but AND(breakdown)=%v",
					i, isTerminale, verdict.Complete, all)
			}
		}
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	docs := append(baseDocs(), doc(models.DocReleveNotes, "attestation_terminale"))
	first := Evaluate(docs, true, testCampaignYear)
	second := Evaluate(docs, true, testCampaignYear)
	if first.Complete != second.Complete || !reflect.DeepEqual(first.Breakdown, second.Breakdown) {
		t.Errorf("evaluate is not idempotent: %v vs %v", first, second)
	}
}

// A document uploaded between the completeness check and the submission
// commit stays pending and shows up on the next evaluation. That late upload
// never invalidates an already-granted verdict: evaluation only looks at
// type and sub-type, not at status.
func TestEvaluate_IgnoresDocumentStatus(t *testing.T) {
	docs := append(baseDocs(),
		doc(models.DocReleveNotes, "attestation_terminale"),
		doc(models.DocReleveNotes, "bulletin_12eme"),
		doc(models.DocReleveNotes, "bulletin_11eme"),
	)
	for _, d := range docs {
		d.Status = models.DocumentSubmitted
	}
	// One straggler still pending.
	docs = append(docs, doc(models.DocCV, ""))

	verdict := Evaluate(docs, true, testCampaignYear)
	if !verdict.Complete {
		t.Fatal("mixed pending/submitted statuses must not affect the verdict")
	}
}

func TestInferIsTerminale(t *testing.T) {
	cases := []struct {
		docType models.DocumentType
		subType string
		want    bool
	}{
		{models.DocReleveNotes, "attestation_terminale", true},
		{models.DocReleveNotes, "bulletin_12eme", true},
		{models.DocReleveNotes, "attestation_2025", false},
		{models.DocReleveNotes, "releve_2024", false},
		{models.DocDiplome, "", false},
		{models.DocCV, "attestation_terminale", false},
	}
	for _, tc := range cases {
		if got := inferIsTerminale(tc.docType, tc.subType); got != tc.want {
			t.Errorf("inferIsTerminale(%s, %q) = %v, want %v", tc.docType, tc.subType, got, tc.want)
		}
	}
}
