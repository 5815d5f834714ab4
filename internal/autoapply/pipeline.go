package autoapply

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	"github.com/playwright-community/playwright-go"

	"go-hirekit/internal/models"
)

const (
	navigationTimeoutMs = 30000
	settleDelayMs       = 2000
	typeDelayMs         = 30
)

// Input describes one auto-apply attempt.
type Input struct {
	JobURL   string
	JobTitle string
	Company  string
	UserID   string
	Profile  FormProfile
}

// FormProfile holds the values the pipeline knows how to type into forms.
type FormProfile struct {
	Name     string
	Email    string
	Phone    string
	Location string
}

// Outcome is the pipeline's verdict. Automation failures surface here as
// Success=false, never as an error past the pipeline boundary.
type Outcome struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Screenshot    string `json:"screenshot,omitempty"`
	ApplicationID string `json:"applicationId,omitempty"`
}

// PageProvider hands out isolated browser pages.
type PageProvider interface {
	AcquirePage(ctx context.Context) (playwright.Page, func(), error)
}

// ApplicationStore durably records the attempt.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, app *models.Application) (*models.Application, error)
}

// Notifier reports finished attempts out of band. May be nil.
type Notifier interface {
	NotifyApplication(app *models.Application, success bool)
}

// Pipeline drives one application attempt through four stages:
// navigate, detect, fill, record.
type Pipeline struct {
	pages    PageProvider
	apps     ApplicationStore
	notifier Notifier
}

func NewPipeline(pages PageProvider, apps ApplicationStore, notifier Notifier) *Pipeline {
	return &Pipeline{pages: pages, apps: apps, notifier: notifier}
}

// Apply runs the full flow. Exactly one application record is written
// per attempt, whatever goes wrong along the way.
func (p *Pipeline) Apply(ctx context.Context, input Input) *Outcome {
	page, release, err := p.pages.AcquirePage(ctx)
	if err != nil {
		return p.recordAborted(ctx, input, "", fmt.Errorf("acquire page: %w", err))
	}
	defer release()

	// Navigate
	if _, err := page.Goto(input.JobURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(navigationTimeoutMs),
	}); err != nil {
		return p.recordAborted(ctx, input, "", fmt.Errorf("navigate: %w", err))
	}

	beforeShot := captureScreenshot(page)

	// Detect
	clicked, err := p.clickSubmitControl(page)
	if err != nil {
		return p.recordAborted(ctx, input, beforeShot, fmt.Errorf("detect control: %w", err))
	}

	if !clicked {
		app, err := p.record(ctx, input, models.StatusPending, beforeShot,
			"Apply button not found. Manual application needed.")
		if err != nil {
			return &Outcome{Success: false, Message: fmt.Sprintf("Error: %v", err)}
		}
		return &Outcome{
			Success:       false,
			Message:       fmt.Sprintf("Could not find Apply button on %s. Saved to tracker — apply manually at the link.", input.Company),
			Screenshot:    beforeShot,
			ApplicationID: app.ID,
		}
	}

	page.WaitForTimeout(settleDelayMs)

	// Fill
	p.fillKnownFields(page, input.Profile)
	filledShot := captureScreenshot(page)

	// Record
	app, err := p.record(ctx, input, models.StatusApplied, filledShot, "Auto-applied via HireKit")
	if err != nil {
		return &Outcome{Success: false, Message: fmt.Sprintf("Error: %v", err)}
	}
	return &Outcome{
		Success:       true,
		Message:       fmt.Sprintf("✅ Applied to %s — %s", input.Company, input.JobTitle),
		Screenshot:    filledShot,
		ApplicationID: app.ID,
	}
}

// clickSubmitControl scans visible clickable elements for an apply/submit
// label and clicks the first match.
func (p *Pipeline) clickSubmitControl(page playwright.Page) (bool, error) {
	candidates, err := page.Locator("a, button").All()
	if err != nil {
		return false, err
	}

	for _, el := range candidates {
		visible, err := el.IsVisible()
		if err != nil || !visible {
			continue
		}
		text, err := el.TextContent(playwright.LocatorTextContentOptions{
			Timeout: playwright.Float(1000),
		})
		if err != nil || !isSubmitLabel(text) {
			continue
		}
		if err := el.Click(); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// fillKnownFields types every profile value that has a matching control.
// Fields with no match are skipped, not errors.
func (p *Pipeline) fillKnownFields(page playwright.Page, profile FormProfile) {
	values := map[fieldKind]string{
		fieldName:     profile.Name,
		fieldEmail:    profile.Email,
		fieldPhone:    profile.Phone,
		fieldLocation: profile.Location,
	}

	for _, kind := range []fieldKind{fieldName, fieldEmail, fieldPhone, fieldLocation} {
		value := values[kind]
		if value == "" {
			continue
		}
		if err := fillField(page, kind, value); err != nil {
			log.Printf("⚠️ Could not fill %s field: %v", kind, err)
		}
	}
}

func fillField(page playwright.Page, kind fieldKind, value string) error {
	for _, sel := range fieldSelectors[kind] {
		count, err := page.Locator(sel).Count()
		if err != nil || count == 0 {
			continue
		}
		field := page.Locator(sel).First()
		if err := field.Clear(); err != nil {
			return err
		}
		return field.PressSequentially(value, playwright.LocatorPressSequentiallyOptions{
			Delay: playwright.Float(typeDelayMs),
		})
	}
	return nil
}

// record persists the single application row for this attempt and fires
// the optional notification.
func (p *Pipeline) record(ctx context.Context, input Input, status models.ApplicationStatus, screenshot, notes string) (*models.Application, error) {
	app, err := p.apps.CreateApplication(ctx, &models.Application{
		UserID:     input.UserID,
		JobTitle:   input.JobTitle,
		Company:    input.Company,
		JobURL:     input.JobURL,
		Status:     status,
		Notes:      notes,
		Screenshot: screenshot,
	})
	if err != nil {
		return nil, fmt.Errorf("save application: %w", err)
	}
	if p.notifier != nil {
		p.notifier.NotifyApplication(app, status == models.StatusApplied)
	}
	return app, nil
}

// recordAborted converts a mid-flight failure into a pending record plus
// a failed outcome. The record write is best effort: on a storage error
// the outcome still reports the original failure.
func (p *Pipeline) recordAborted(ctx context.Context, input Input, screenshot string, cause error) *Outcome {
	log.Printf("⚠️ Auto-apply aborted for %s: %v", input.JobURL, cause)

	outcome := &Outcome{Success: false, Message: fmt.Sprintf("Error: %v", cause), Screenshot: screenshot}
	app, err := p.record(ctx, input, models.StatusPending, screenshot,
		fmt.Sprintf("Auto-apply aborted: %v. Manual application needed.", cause))
	if err != nil {
		log.Printf("⚠️ Could not save aborted application: %v", err)
		return outcome
	}
	outcome.ApplicationID = app.ID
	return outcome
}

// captureScreenshot returns the page as base64 PNG evidence; failures
// just mean no evidence is attached.
func captureScreenshot(page playwright.Page) string {
	data, err := page.Screenshot()
	if err != nil {
		log.Printf("⚠️ Failed to capture screenshot: %v", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}
