package domain

// CaseTopic is the area of law a case belongs to. Triggers may target a
// single topic or TopicAny to match every topic.
type CaseTopic string

const (
	TopicRepairs  CaseTopic = "REPAIRS"
	TopicBonds    CaseTopic = "BONDS"
	TopicEviction CaseTopic = "EVICTION"
	TopicOther    CaseTopic = "OTHER"

	// TopicAny is the wildcard topic used in trigger configuration only;
	// no case ever carries it.
	TopicAny CaseTopic = "ANY"
)

// CaseStage tracks how far a case has progressed.
type CaseStage string

const (
	StageUnstarted         CaseStage = "UNSTARTED"
	StageClientAgreement   CaseStage = "CLIENT_AGREEMENT"
	StageAdvice            CaseStage = "ADVICE"
	StageFormalLetter      CaseStage = "FORMAL_LETTER"
	StageNegotiations      CaseStage = "NEGOTIATIONS"
	StagePostCaseInterview CaseStage = "POST_CASE_INTERVIEW"
	StageClosed            CaseStage = "CLOSED"
)

// CaseRole names the capacities in which a user can be responsible for a case.
type CaseRole string

const (
	RoleParalegal   CaseRole = "PARALEGAL"
	RoleLawyer      CaseRole = "LAWYER"
	RoleCoordinator CaseRole = "COORDINATOR"
)

// IsValid checks if the role is one of the allowed values.
func (r CaseRole) IsValid() bool {
	switch r {
	case RoleParalegal, RoleLawyer, RoleCoordinator:
		return true
	default:
		return false
	}
}

// CaseSnapshot is a read-only view of a case at a point in time. Cases are
// owned by the case-management system; the engine only ever sees before/after
// snapshots delivered with each mutation notification.
type CaseSnapshot struct {
	ID          string
	Topic       CaseTopic
	ParalegalID *string
	LawyerID    *string
	Stage       CaseStage
	IsOpen      bool
}

// RoleOf returns the user currently filling the given direct role, or nil.
// Coordinator is not a per-case field and always resolves to nil here.
func (s CaseSnapshot) RoleOf(role CaseRole) *string {
	switch role {
	case RoleParalegal:
		return s.ParalegalID
	case RoleLawyer:
		return s.LawyerID
	default:
		return nil
	}
}

// HasUser reports whether the user holds any direct role on the case.
// Used to detect ambiguous ownership when a role-holder changes but the
// outgoing user is still active on the case in another capacity.
func (s CaseSnapshot) HasUser(userID string) bool {
	if s.ParalegalID != nil && *s.ParalegalID == userID {
		return true
	}
	if s.LawyerID != nil && *s.LawyerID == userID {
		return true
	}
	return false
}
