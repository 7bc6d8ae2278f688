package auth

import (
	"github.com/hirelane/job-board/internal/domain"
	apperrors "github.com/hirelane/job-board/pkg/util/errorutil"
)

// CheckRole fails with Unauthorized for a missing identity and Forbidden when
// the identity holds none of the allowed roles.
func CheckRole(identity domain.Identity, allowed ...domain.Role) error {
	if identity.IsZero() {
		return apperrors.NewUnauthorized("authentication required")
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, role := range allowed {
		if identity.Role == role {
			return nil
		}
	}
	return apperrors.NewForbidden(string(allowed[0]) + " role required")
}

// CheckJobOwner requires an employer identity that posted the job.
func CheckJobOwner(identity domain.Identity, postedBy string) error {
	if err := CheckRole(identity, domain.RoleEmployer); err != nil {
		return err
	}
	if postedBy == "" || postedBy != identity.UserID {
		return apperrors.NewForbidden("job belongs to another employer")
	}
	return nil
}

// CheckResumeReader lets the employer who posted the job and the candidate
// who applied read a resume.
func CheckResumeReader(identity domain.Identity, applicantID, postedBy string) error {
	if err := CheckRole(identity, domain.RoleEmployer, domain.RoleCandidate); err != nil {
		return err
	}
	if identity.Role == domain.RoleCandidate {
		if applicantID == "" || applicantID != identity.UserID {
			return apperrors.NewForbidden("resume belongs to another candidate")
		}
		return nil
	}
	return CheckJobOwner(identity, postedBy)
}
