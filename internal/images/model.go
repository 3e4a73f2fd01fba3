package images

import "time"

// Record is a gallery image document. The document ID is carried out-of-band
// so full-document writes never persist it as a field.
type Record struct {
	ID              string    `firestore:"-" json:"id"`
	Prompt          string    `firestore:"prompt" json:"prompt"`
	ImageURL        string    `firestore:"imageUrl" json:"imageUrl"`
	OwnerID         string    `firestore:"userId" json:"userId"`
	OwnerName       string    `firestore:"userDisplayName" json:"userDisplayName"`
	OwnerEmail      string    `firestore:"userEmail" json:"userEmail,omitempty"`
	CreatedAt       time.Time `firestore:"createdAt" json:"createdAt"`
	Votes           int       `firestore:"votes" json:"votes"`
	VoterIDs        []string  `firestore:"voterIds" json:"voterIds"`
	ParentID        string    `firestore:"parentId" json:"parentId,omitempty"`
	Version         int       `firestore:"version" json:"version"`
	IsLatestVersion bool      `firestore:"isLatestVersion" json:"isLatestVersion"`
	VersionHistory  []string  `firestore:"versionHistory" json:"versionHistory,omitempty"`
}

// HasVoter reports whether the given user is in the voter set.
func (r Record) HasVoter(userID string) bool {
	for _, id := range r.VoterIDs {
		if id == userID {
			return true
		}
	}
	return false
}
