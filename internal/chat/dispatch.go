package chat

import (
	"context"
	"log"
	"math"
	"strconv"

	"go-hirekit/internal/ai"
	"go-hirekit/internal/autoapply"
	"go-hirekit/internal/jobs"
	"go-hirekit/internal/models"
	"go-hirekit/internal/quota"
)

// Collaborator contracts. All persistence and outbound work happens
// behind these, so handlers stay testable with plain fakes.

type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
}

type ApplicationStore interface {
	ListApplications(ctx context.Context, userID string) ([]models.Application, error)
}

type JobSearcher interface {
	Configured() bool
	Search(ctx context.Context, query, location string) ([]jobs.Listing, error)
}

type Generators interface {
	GenerateResume(ctx context.Context, profile *models.Profile, jobTitle, jobDescription string) (string, error)
	ScoreResume(ctx context.Context, resumeText, jobDescription string) (*ai.ResumeScore, error)
	GenerateCoverLetter(ctx context.Context, profile *models.Profile, jobTitle, company string) (string, error)
	InterviewPrep(ctx context.Context, profile *models.Profile, jobTitle, company string) (string, error)
}

type Applier interface {
	Apply(ctx context.Context, input autoapply.Input) *autoapply.Outcome
}

type Gate interface {
	Check(ctx context.Context, userID string, res quota.Resource) (quota.Check, error)
	Charge(ctx context.Context, userID string, res quota.Resource) error
	Summary(ctx context.Context, userID string) (quota.Summary, error)
}

// turnContext carries the per-turn user state into handlers.
type turnContext struct {
	UserID  string
	Profile *models.Profile
}

// noCharge marks a handler outcome that consumes no quota.
const noCharge = quota.Resource("")

// handlerFunc executes one action. It may rewrite the decision (message
// and action) and returns the action result plus the resource to charge.
// Charging itself is done by Dispatch, not by handlers.
type handlerFunc func(ctx context.Context, dec *Decision, tc *turnContext) (any, quota.Resource, error)

// Dispatcher routes a parsed decision to exactly one action handler.
type Dispatcher struct {
	profiles ProfileStore
	apps     ApplicationStore
	search   JobSearcher
	gen      Generators
	applier  Applier
	gate     Gate

	handlers map[ActionKind]handlerFunc
}

func NewDispatcher(profiles ProfileStore, apps ApplicationStore, search JobSearcher, gen Generators, applier Applier, gate Gate) *Dispatcher {
	d := &Dispatcher{
		profiles: profiles,
		apps:     apps,
		search:   search,
		gen:      gen,
		applier:  applier,
		gate:     gate,
	}
	d.handlers = map[ActionKind]handlerFunc{
		ActionSaveProfile:      d.saveProfile,
		ActionSearchJobs:       d.searchJobs,
		ActionBuildResume:      d.buildResume,
		ActionScoreResume:      d.scoreResume,
		ActionAutoApply:        d.autoApply,
		ActionCoverLetter:      d.coverLetter,
		ActionInterviewPrep:    d.interviewPrep,
		ActionShowApplications: d.showApplications,
		ActionShowPlan:         d.showPlan,
		ActionUpgradePlan:      d.upgradePlan,
		ActionNone:             d.none,
	}
	return d
}

// Dispatch executes the handler for the decision's action and applies
// the quota charge the handler declared. Each handler runs at most once
// per turn, and charging always follows the handler's side effect.
func (d *Dispatcher) Dispatch(ctx context.Context, dec *Decision, userID string, profile *models.Profile) (any, error) {
	h, ok := d.handlers[dec.Action]
	if !ok {
		return nil, nil
	}

	result, charge, err := h(ctx, dec, &turnContext{UserID: userID, Profile: profile})
	if err != nil {
		return nil, err
	}

	if charge != noCharge && userID != "" {
		// usage bookkeeping must not undo a side effect that already
		// happened, so a failed charge is logged and swallowed
		if cerr := d.gate.Charge(ctx, userID, charge); cerr != nil {
			log.Printf("⚠️ Failed to charge %s quota for %s: %v", charge, userID, cerr)
		}
	}
	return result, nil
}

func (d *Dispatcher) saveProfile(ctx context.Context, dec *Decision, tc *turnContext) (any, quota.Resource, error) {
	if tc.UserID == "" {
		return nil, noCharge, nil
	}

	merged := mergeProfile(tc.UserID, dec.Data, tc.Profile)
	if _, err := d.profiles.UpsertProfile(ctx, merged); err != nil {
		return nil, noCharge, err
	}
	return map[string]any{"saved": true}, noCharge, nil
}

// mergeProfile layers the model-extracted fields over whatever the user
// already stored: payload wins, existing value is kept when the payload
// is silent.
func mergeProfile(userID string, data map[string]any, existing *models.Profile) *models.Profile {
	if existing == nil {
		existing = &models.Profile{}
	}
	p := *existing
	p.UserID = userID

	p.Name = firstNonEmpty(payloadStr(data, "name"), existing.Name)
	p.Experience = firstNonEmpty(payloadStr(data, "years_experience"), existing.Experience)
	p.Education = firstNonEmpty(payloadStr(data, "education"), existing.Education)
	p.Location = firstNonEmpty(payloadStr(data, "target_location"), existing.Location)
	p.Phone = firstNonEmpty(payloadStr(data, "phone"), existing.Phone)
	p.TargetRole = firstNonEmpty(payloadStr(data, "target_role"), payloadStr(data, "profession"), existing.TargetRole)
	p.ResumeText = firstNonEmpty(payloadStr(data, "resume_text"), existing.ResumeText)

	if skills := payloadStrings(data, "skills"); len(skills) > 0 {
		p.Skills = skills
	}
	return &p
}

func (d *Dispatcher) searchJobs(ctx context.Context, dec *Decision, tc *turnContext) (any, quota.Resource, error) {
	query := dec.str("query")
	location := dec.str("location")
	if tc.Profile != nil {
		query = firstNonEmpty(query, tc.Profile.TargetRole)
		location = firstNonEmpty(location, tc.Profile.Location)
	}

	if !d.search.Configured() {
		return map[string]any{"jobs": []jobs.Listing{}, "source": "none", "note": "Job search API not configured"}, noCharge, nil
	}

	listings, err := d.search.Search(ctx, query, location)
	if err != nil {
		// search problems never fail the turn
		log.Printf("⚠️ Job search failed: %v", err)
		return map[string]any{"jobs": []jobs.Listing{}, "source": "error"}, noCharge, nil
	}

	for i := range listings {
		if len(listings[i].Description) > 200 {
			listings[i].Description = listings[i].Description[:200]
		}
	}
	return map[string]any{"jobs": listings, "source": "api"}, noCharge, nil
}

func (d *Dispatcher) buildResume(ctx context.Context, dec *Decision, tc *turnContext) (any, quota.Resource, error) {
	if tc.Profile == nil {
		dec.Message = "I need to know about you first! Tell me your profession, skills, and experience."
		dec.Action = ActionNone
		return nil, noCharge, nil
	}

	jobTitle := firstNonEmpty(dec.str("job_title"), tc.Profile.TargetRole, "Software Developer")
	resume, err := d.gen.GenerateResume(ctx, tc.Profile, jobTitle, dec.str("job_description"))
	if err != nil {
		return nil, noCharge, err
	}
	return map[string]any{"resume": resume}, quota.ResourceResume, nil
}

func (d *Dispatcher) scoreResume(ctx context.Context, dec *Decision, tc *turnContext) (any, quota.Resource, error) {
	resumeText := ""
	if tc.Profile != nil {
		resumeText = tc.Profile.ResumeText
	}
	jobDescription := dec.str("job_description")

	if resumeText == "" || jobDescription == "" {
		dec.Message = "I need your resume and a job description to score. Upload your resume first!"
		dec.Action = ActionNone
		return nil, noCharge, nil
	}

	score, err := d.gen.ScoreResume(ctx, resumeText, jobDescription)
	if err != nil {
		return nil, noCharge, err
	}
	return score, noCharge, nil
}

func (d *Dispatcher) autoApply(ctx context.Context, dec *Decision, tc *turnContext) (any, quota.Resource, error) {
	if tc.UserID == "" {
		dec.Message = "You need to sign in first to auto-apply!"
		dec.Action = ActionNone
		return nil, noCharge, nil
	}

	// quota check precedes the pipeline; the charge follows success
	check, err := d.gate.Check(ctx, tc.UserID, quota.ResourceApply)
	if err != nil {
		return nil, noCharge, err
	}
	if !check.Allowed {
		dec.Message = "You've used all your auto-applies today. Upgrade for more! 🚀"
		dec.Action = ActionShowPlan
		return map[string]any{"reason": "apply_limit"}, noCharge, nil
	}

	jobURL := dec.str("job_url")
	if jobURL == "" || tc.Profile == nil {
		return nil, noCharge, nil
	}

	outcome := d.applier.Apply(ctx, autoapply.Input{
		JobURL:   jobURL,
		JobTitle: tc.Profile.TargetRole,
		Company:  firstNonEmpty(dec.str("company"), "Company"),
		UserID:   tc.UserID,
		Profile: autoapply.FormProfile{
			Name:     tc.Profile.Name,
			Email:    tc.UserID,
			Phone:    tc.Profile.Phone,
			Location: tc.Profile.Location,
		},
	})

	charge := noCharge
	if outcome.Success {
		charge = quota.ResourceApply
	}
	return outcome, charge, nil
}

func (d *Dispatcher) coverLetter(ctx context.Context, dec *Decision, tc *turnContext) (any, quota.Resource, error) {
	if tc.Profile == nil {
		return nil, noCharge, nil
	}
	letter, err := d.gen.GenerateCoverLetter(ctx, tc.Profile,
		firstNonEmpty(dec.str("job_title"), tc.Profile.TargetRole), dec.str("company"))
	if err != nil {
		return nil, noCharge, err
	}
	return map[string]any{"coverLetter": letter}, noCharge, nil
}

func (d *Dispatcher) interviewPrep(ctx context.Context, dec *Decision, tc *turnContext) (any, quota.Resource, error) {
	if tc.Profile == nil {
		return nil, noCharge, nil
	}
	prep, err := d.gen.InterviewPrep(ctx, tc.Profile,
		firstNonEmpty(dec.str("job_title"), tc.Profile.TargetRole), dec.str("company"))
	if err != nil {
		return nil, noCharge, err
	}
	return map[string]any{"interviewPrep": prep}, noCharge, nil
}

func (d *Dispatcher) showApplications(ctx context.Context, _ *Decision, tc *turnContext) (any, quota.Resource, error) {
	if tc.UserID == "" {
		return nil, noCharge, nil
	}
	apps, err := d.apps.ListApplications(ctx, tc.UserID)
	if err != nil {
		return nil, noCharge, err
	}
	return map[string]any{"applications": apps}, noCharge, nil
}

func (d *Dispatcher) showPlan(ctx context.Context, _ *Decision, tc *turnContext) (any, quota.Resource, error) {
	if tc.UserID == "" {
		return map[string]any{"plan": quota.PlanFree, "message": "Sign in to see your plan"}, noCharge, nil
	}
	summary, err := d.gate.Summary(ctx, tc.UserID)
	if err != nil {
		return nil, noCharge, err
	}
	return summary, noCharge, nil
}

func (d *Dispatcher) upgradePlan(context.Context, *Decision, *turnContext) (any, quota.Resource, error) {
	// redirect hint only, nothing is mutated here
	return map[string]any{"redirect": "/api/subscription/checkout"}, noCharge, nil
}

func (d *Dispatcher) none(context.Context, *Decision, *turnContext) (any, quota.Resource, error) {
	return nil, noCharge, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// payloadStr tolerates the model sending numbers where strings belong
// (years_experience above all).
func payloadStr(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return strconv.Itoa(int(v))
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func payloadStrings(data map[string]any, key string) []string {
	items, ok := data[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
