package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	config "github.com/anjiri1684/assessment_engine/configs"
	"github.com/anjiri1684/assessment_engine/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// ReportService renders a graded submission's score report as a PDF and
// uploads it, returning the hosted URL for the result email.
type ReportService struct {
	store Store
}

func NewReportService(store Store) *ReportService {
	return &ReportService{store: store}
}

func (r *ReportService) GenerateScoreReport(sub *models.Submission) (string, error) {
	assessment, err := r.store.GetAssessment(sub.AssessmentID)
	if err != nil {
		return "", err
	}
	user, err := r.store.GetUser(sub.UserID)
	if err != nil {
		return "", err
	}

	html, err := renderReportHTML(user, assessment, sub)
	if err != nil {
		return "", fmt.Errorf("failed to render report HTML: %w", err)
	}
	pdfBytes, err := generatePDFFromHTML(html)
	if err != nil {
		return "", fmt.Errorf("failed to render report PDF: %w", err)
	}
	return uploadReport(pdfBytes, sub.ID)
}

func renderReportHTML(user *models.User, assessment *models.Assessment, sub *models.Submission) (string, error) {
	tmpl, err := template.ParseFiles("templates/score_report.html")
	if err != nil {
		return "", err
	}

	outcome := "Fail"
	if sub.Passed {
		outcome = "Pass"
	}
	data := struct {
		StudentName   string
		Assessment    string
		AttemptNumber int
		TotalScore    float64
		TotalMarks    float64
		Percentage    float64
		Outcome       string
		GradedDate    string
	}{
		StudentName:   user.FullName,
		Assessment:    assessment.Title,
		AttemptNumber: sub.AttemptNumber,
		TotalScore:    sub.TotalScore,
		TotalMarks:    assessment.TotalMarks,
		Percentage:    sub.Percentage,
		Outcome:       outcome,
		GradedDate:    time.Now().Format("January 2, 2006"),
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadReport(fileBytes []byte, submissionID uuid.UUID) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("score_reports/%s", submissionID),
		Folder:       "assessment_engine_reports",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}
	return uploadResult.SecureURL, nil
}
