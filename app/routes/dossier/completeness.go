package dossier

import (
	"fmt"
	"strings"

	"github.com/MouctarBahLk/soorocampus-sub001/app/models"
)

// Requirement names used in the completeness breakdown. The front end keys
// its checklist off these, so they are part of the API contract.
const (
	ReqPhotoIdentite = "photo_identite"
	ReqCV            = "cv"
	ReqPasseport     = "passeport"
	ReqDiplome       = "diplome"
	ReqReleveNotes   = "releve_notes"
)

// Transcript sub-types. A terminale student provides the terminal-year
// attestation plus term bulletins; a post-bac student provides one
// attestation and three yearly releves named after the campaign year.
const (
	SubAttestationTerminale = "attestation_terminale"
	bulletinPrefix          = "bulletin_"
)

// Verdict is the result of a completeness evaluation: the overall flag and
// the per-requirement breakdown behind it.
type Verdict struct {
	Complete  bool            `json:"is_complete"`
	Breakdown map[string]bool `json:"breakdown"`
}

// postBacTranscriptSubTypes lists the four sub-types a post-bac transcript
// bundle must contain for the given campaign year: the attestation for the
// campaign year and the three prior full-year releves.
func postBacTranscriptSubTypes(campaignYear int) []string {
	return []string{
		fmt.Sprintf("attestation_%d", campaignYear),
		fmt.Sprintf("releve_%d", campaignYear-1),
		fmt.Sprintf("releve_%d", campaignYear-2),
		fmt.Sprintf("releve_%d", campaignYear-3),
	}
}

// Evaluate computes the completeness verdict for a set of documents under
// the track's requirement set. It is a pure function: no side effects, and
// an empty document set simply yields an all-false breakdown.
//
// The transcript bundle counts distinct sub-types, never raw uploads, so
// re-uploading the same bulletin three times satisfies only one slot.
func Evaluate(docs []*models.Document, isTerminale bool, campaignYear int) Verdict {
	byType := make(map[models.DocumentType]bool)
	transcriptSubTypes := make(map[string]bool)
	for _, d := range docs {
		byType[d.Type] = true
		if d.Type == models.DocReleveNotes && d.SubType != "" {
			transcriptSubTypes[d.SubType] = true
		}
	}

	breakdown := map[string]bool{
		ReqPhotoIdentite: byType[models.DocPhotoIdentite],
		ReqCV:            byType[models.DocCV],
		ReqPasseport:     byType[models.DocPasseport],
	}

	if isTerminale {
		distinctBulletins := 0
		for st := range transcriptSubTypes {
			if strings.HasPrefix(st, bulletinPrefix) {
				distinctBulletins++
			}
		}
		breakdown[ReqReleveNotes] = transcriptSubTypes[SubAttestationTerminale] && distinctBulletins >= 2
	} else {
		breakdown[ReqDiplome] = byType[models.DocDiplome]
		bundleComplete := true
		for _, st := range postBacTranscriptSubTypes(campaignYear) {
			if !transcriptSubTypes[st] {
				bundleComplete = false
				break
			}
		}
		breakdown[ReqReleveNotes] = bundleComplete
	}

	complete := true
	for _, satisfied := range breakdown {
		if !satisfied {
			complete = false
			break
		}
	}

	return Verdict{Complete: complete, Breakdown: breakdown}
}

// inferIsTerminale guesses the track from the first uploaded document. It
// only seeds the dossier flag at lazy creation; once the dossier row exists
// its stored flag is the single source of truth.
func inferIsTerminale(docType models.DocumentType, subType string) bool {
	if docType != models.DocReleveNotes {
		return false
	}
	return subType == SubAttestationTerminale || strings.HasPrefix(subType, bulletinPrefix)
}
