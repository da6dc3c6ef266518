package admission_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chaguo/core"
	"github.com/trezcool/chaguo/core/admission"
	"github.com/trezcool/chaguo/core/catalog"
	"github.com/trezcool/chaguo/services/email"
	"github.com/trezcool/chaguo/storage/database/inmem"
	"github.com/trezcool/chaguo/tests"
)

func TestMailNotifier_ApplicationPromoted(t *testing.T) {
	conf := core.NewTestConfig()
	core.ParseEmailTemplates(core.NopLogger{})
	emailsvc.ResetSentMessages()

	db := inmemdb.Open()
	catalogRepo := inmemdb.NewCatalogRepository(db)
	studentRepo := inmemdb.NewStudentRepository(db)
	inst := testutil.CreateInstitution(t, catalogRepo, "uon", true)
	course := testutil.CreateCourse(t, catalogRepo, inst.ID, "Computer Science", catalog.CourseRequirements{})
	stu := testutil.CreateStudent(t, studentRepo, "amina")

	notifier := admission.NewMailNotifier(emailsvc.NewConsoleServiceMock(conf), catalogRepo, studentRepo, core.NopLogger{})
	notifier.ApplicationPromoted(context.Background(), admission.Application{
		ID:            "app",
		StudentID:     stu.ID,
		InstitutionID: inst.ID,
		CourseID:      course.ID,
		Status:        admission.StatusAdmitted,
		AppliedAt:     time.Now(),
	})

	sent := emailsvc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, stu.Email, sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "Computer Science at uon")
	assert.Contains(t, sent[0].TextContent, conf.FrontendBaseURL)
	assert.Contains(t, sent[0].HTMLContent, "Computer Science")

	// unknown students are logged and skipped
	notifier.ApplicationPromoted(context.Background(), admission.Application{StudentID: "nope", CourseID: course.ID})
	assert.Len(t, emailsvc.Sent(), 1)
}
