// internal/app/system/lifecycle/engine.go
package lifecycle

import (
	"context"
	"errors"
	"time"

	gymstore "github.com/easyfittrack/fittrack/internal/app/store/gyms"
	joinrequeststore "github.com/easyfittrack/fittrack/internal/app/store/joinrequests"
	membershiprequeststore "github.com/easyfittrack/fittrack/internal/app/store/membershiprequests"
	userstore "github.com/easyfittrack/fittrack/internal/app/store/users"
	"github.com/easyfittrack/fittrack/internal/app/system/auditlog"
	"github.com/easyfittrack/fittrack/internal/app/system/authz"
	"github.com/easyfittrack/fittrack/internal/app/system/txn"
	"github.com/easyfittrack/fittrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Actor identifies who is performing a lifecycle operation. GymID is the
// NilObjectID for unaffiliated users.
type Actor struct {
	ID    primitive.ObjectID
	Role  string
	GymID primitive.ObjectID
}

// Engine implements the membership lifecycle: join requests, duration
// requests, approvals, denials and removals. Every multi-document mutation
// runs inside a transaction so gym lists, user affiliations and request
// statuses never drift apart.
type Engine struct {
	db      *mongo.Database
	users   *userstore.Store
	gyms    *gymstore.Store
	joins   *joinrequeststore.Store
	memreqs *membershiprequeststore.Store
	audit   *auditlog.Logger
	log     *zap.Logger
}

func New(
	db *mongo.Database,
	users *userstore.Store,
	gyms *gymstore.Store,
	joins *joinrequeststore.Store,
	memreqs *membershiprequeststore.Store,
	audit *auditlog.Logger,
	log *zap.Logger,
) *Engine {
	return &Engine{
		db:      db,
		users:   users,
		gyms:    gyms,
		joins:   joins,
		memreqs: memreqs,
		audit:   audit,
		log:     log,
	}
}

// validateDuration enforces the duration rules for member-originated
// requests: members must name a duration and it must be a known code.
// Trainers never carry one.
func validateDuration(role string, duration models.DurationCode) (models.DurationCode, error) {
	if role == models.RoleTrainer {
		return "", nil
	}
	if duration == "" {
		return "", ErrMissingDuration
	}
	if !models.IsValidDuration(duration) {
		return "", ErrInvalidDuration
	}
	return duration, nil
}

// SubmitJoinRequest opens a pending join request from actor to the gym.
// Members must supply a membership duration; trainers must not.
func (e *Engine) SubmitJoinRequest(ctx context.Context, actor Actor, gymID primitive.ObjectID, duration models.DurationCode) (models.JoinRequest, error) {
	if actor.Role != models.RoleMember && actor.Role != models.RoleTrainer {
		return models.JoinRequest{}, ErrForbidden
	}
	if !actor.GymID.IsZero() {
		return models.JoinRequest{}, ErrAlreadyAffiliated
	}

	duration, err := validateDuration(actor.Role, duration)
	if err != nil {
		return models.JoinRequest{}, err
	}

	if _, err := e.gyms.GetByID(ctx, gymID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.JoinRequest{}, ErrNotFound
		}
		return models.JoinRequest{}, err
	}

	var jr models.JoinRequest
	err = txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		var err error
		jr, err = e.joins.Create(ctx, models.JoinRequest{
			UserID:   actor.ID,
			UserRole: actor.Role,
			GymID:    gymID,
			Duration: duration,
		})
		if err != nil {
			return err
		}
		return e.gyms.AppendJoinRequest(ctx, gymID, jr.ID)
	})
	if err != nil {
		if errors.Is(err, joinrequeststore.ErrDuplicatePending) {
			return models.JoinRequest{}, ErrDuplicatePending
		}
		return models.JoinRequest{}, err
	}

	e.audit.JoinRequestSubmitted(actor.ID, actor.Role, gymID, jr.ID)
	return jr, nil
}

// ResolveJoinRequest accepts or denies a pending join request. On accept the
// requester is affiliated with the gym, added to the matching roster list,
// and for members granted a membership computed from the requested duration.
// Exactly one concurrent resolver wins; the rest get ErrAlreadyResolved.
func (e *Engine) ResolveJoinRequest(ctx context.Context, actor Actor, requestID primitive.ObjectID, accept bool) (models.JoinRequest, error) {
	jr, err := e.joins.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.JoinRequest{}, ErrNotFound
		}
		return models.JoinRequest{}, err
	}

	if !authz.CanReview(actor.Role, actor.GymID, jr.GymID, jr.UserRole) {
		return models.JoinRequest{}, ErrForbidden
	}

	if !accept {
		resolved, err := e.joins.Resolve(ctx, requestID, models.JoinDenied)
		if err != nil {
			return models.JoinRequest{}, mapResolveErr(err)
		}
		e.audit.JoinRequestResolved(actor.ID, actor.Role, jr.GymID, requestID, false)
		return resolved, nil
	}

	// The requester may have joined another gym since submitting. This
	// read is advisory; SetAffiliation's gym_id-absent filter re-enforces
	// single affiliation inside the transaction, including on retry.
	requester, err := e.users.GetByID(ctx, jr.UserID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.JoinRequest{}, ErrNotFound
		}
		return models.JoinRequest{}, err
	}
	if requester.GymID != nil {
		return models.JoinRequest{}, ErrAlreadyAffiliated
	}

	var resolved models.JoinRequest
	err = txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		var err error
		resolved, err = e.joins.Resolve(ctx, requestID, models.JoinAccepted)
		if err != nil {
			return err
		}
		if err := e.users.SetAffiliation(ctx, jr.UserID, jr.GymID); err != nil {
			return err
		}
		switch jr.UserRole {
		case models.RoleTrainer:
			return e.gyms.AddTrainer(ctx, jr.GymID, jr.UserID)
		default:
			if err := e.gyms.AddMember(ctx, jr.GymID, jr.UserID); err != nil {
				return err
			}
			m := models.NewMembership(jr.Duration, time.Now().UTC())
			return e.users.SetMembership(ctx, jr.UserID, m)
		}
	})
	if err != nil {
		return models.JoinRequest{}, mapResolveErr(err)
	}

	e.audit.JoinRequestResolved(actor.ID, actor.Role, jr.GymID, requestID, true)
	return resolved, nil
}

// RemoveAffiliate detaches a member or trainer from the actor's gym. Only
// owners may remove, and only at their own gym. A removed member's pending
// duration requests are swept away with them.
func (e *Engine) RemoveAffiliate(ctx context.Context, actor Actor, affiliateID primitive.ObjectID) error {
	if actor.Role != models.RoleOwner || actor.GymID.IsZero() {
		return ErrForbidden
	}

	affiliate, err := e.users.GetByID(ctx, affiliateID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	if affiliate.Role == models.RoleOwner {
		return ErrForbidden
	}
	if affiliate.GymID == nil || *affiliate.GymID != actor.GymID {
		return ErrNotAffiliated
	}

	err = txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		if err := e.users.ClearAffiliation(ctx, affiliateID); err != nil {
			return err
		}
		switch affiliate.Role {
		case models.RoleTrainer:
			return e.gyms.RemoveTrainer(ctx, actor.GymID, affiliateID)
		default:
			if err := e.gyms.RemoveMember(ctx, actor.GymID, affiliateID); err != nil {
				return err
			}
			return e.memreqs.DeletePendingByMember(ctx, affiliateID, actor.GymID)
		}
	})
	if err != nil {
		return err
	}

	e.audit.AffiliateRemoved(actor.ID, actor.Role, actor.GymID, affiliateID, affiliate.Role)
	return nil
}

// SubmitMembershipRequest opens a pending duration request from an affiliated
// member to their own gym.
func (e *Engine) SubmitMembershipRequest(ctx context.Context, actor Actor, duration models.DurationCode) (models.MembershipRequest, error) {
	if actor.Role != models.RoleMember {
		return models.MembershipRequest{}, ErrForbidden
	}
	if actor.GymID.IsZero() {
		return models.MembershipRequest{}, ErrNotAffiliated
	}
	if duration == "" {
		return models.MembershipRequest{}, ErrMissingDuration
	}
	if !models.IsValidDuration(duration) {
		return models.MembershipRequest{}, ErrInvalidDuration
	}

	mr, err := e.memreqs.Create(ctx, models.MembershipRequest{
		MemberID:          actor.ID,
		GymID:             actor.GymID,
		RequestedDuration: duration,
	})
	if err != nil {
		if errors.Is(err, membershiprequeststore.ErrDuplicatePending) {
			return models.MembershipRequest{}, ErrDuplicatePending
		}
		return models.MembershipRequest{}, err
	}

	e.audit.MembershipRequestSubmitted(actor.ID, actor.GymID, mr.ID, string(duration))
	return mr, nil
}

// ResolveMembershipRequest approves or denies a pending duration request.
// On approval the member's membership is replaced with one starting now for
// the requested duration.
func (e *Engine) ResolveMembershipRequest(ctx context.Context, actor Actor, requestID primitive.ObjectID, approve bool) (models.MembershipRequest, error) {
	mr, err := e.memreqs.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.MembershipRequest{}, ErrNotFound
		}
		return models.MembershipRequest{}, err
	}

	// Duration requests are always member-originated, so trainers may
	// review them alongside owners.
	if !authz.CanReview(actor.Role, actor.GymID, mr.GymID, models.RoleMember) {
		return models.MembershipRequest{}, ErrForbidden
	}

	if !approve {
		resolved, err := e.memreqs.Resolve(ctx, requestID, models.MembershipDenied)
		if err != nil {
			return models.MembershipRequest{}, mapResolveErr(err)
		}
		e.audit.MembershipRequestResolved(actor.ID, actor.Role, mr.GymID, requestID, false)
		return resolved, nil
	}

	member, err := e.users.GetByID(ctx, mr.MemberID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.MembershipRequest{}, ErrNotFound
		}
		return models.MembershipRequest{}, err
	}
	if member.GymID == nil || *member.GymID != mr.GymID {
		return models.MembershipRequest{}, ErrNotAffiliated
	}

	var resolved models.MembershipRequest
	err = txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		var err error
		resolved, err = e.memreqs.Resolve(ctx, requestID, models.MembershipApproved)
		if err != nil {
			return err
		}
		m := models.NewMembership(mr.RequestedDuration, time.Now().UTC())
		return e.users.SetMembership(ctx, mr.MemberID, m)
	})
	if err != nil {
		return models.MembershipRequest{}, mapResolveErr(err)
	}

	e.audit.MembershipRequestResolved(actor.ID, actor.Role, mr.GymID, requestID, true)
	return resolved, nil
}

// SetMembershipDirectly lets an owner grant a membership without waiting for
// a request. If the member has a pending request for the exact same duration
// it is approved as part of the same transaction, so the ledger agrees with
// the grant. Returns whether such a request was reconciled.
func (e *Engine) SetMembershipDirectly(ctx context.Context, actor Actor, memberID primitive.ObjectID, duration models.DurationCode) (bool, error) {
	if actor.Role != models.RoleOwner || actor.GymID.IsZero() {
		return false, ErrForbidden
	}
	if duration == "" {
		return false, ErrMissingDuration
	}
	if !models.IsValidDuration(duration) {
		return false, ErrInvalidDuration
	}

	member, err := e.users.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, ErrNotFound
		}
		return false, err
	}
	if member.Role != models.RoleMember {
		return false, ErrForbidden
	}
	if member.GymID == nil || *member.GymID != actor.GymID {
		return false, ErrNotAffiliated
	}

	var reconciled bool
	err = txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		m := models.NewMembership(duration, time.Now().UTC())
		if err := e.users.SetMembership(ctx, memberID, m); err != nil {
			return err
		}
		var err error
		reconciled, err = e.memreqs.ApproveMatching(ctx, memberID, actor.GymID, duration)
		return err
	})
	if err != nil {
		return false, err
	}

	e.audit.MembershipSet(actor.ID, actor.Role, actor.GymID, memberID, string(duration), reconciled)
	return reconciled, nil
}

// mapResolveErr converts store-level resolve failures to lifecycle sentinels.
func mapResolveErr(err error) error {
	switch {
	case errors.Is(err, joinrequeststore.ErrAlreadyResolved),
		errors.Is(err, membershiprequeststore.ErrAlreadyResolved):
		return ErrAlreadyResolved
	case errors.Is(err, userstore.ErrAlreadyAffiliated):
		return ErrAlreadyAffiliated
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	default:
		return err
	}
}
