package admission

import (
	"context"
	"net/mail"

	"github.com/trezcool/chaguo/core"
)

const promotionTemplate = "waitlist_promotion"

type promotionMailData struct {
	Name            string
	CourseName      string
	InstitutionName string
}

// MailNotifier emails students promoted from a waiting list.
type MailNotifier struct {
	mailSvc  core.EmailService
	catalog  CatalogStore
	profiles ProfileStore
	logger   core.Logger
}

var _ Notifier = (*MailNotifier)(nil)

func NewMailNotifier(mailSvc core.EmailService, catalog CatalogStore, profiles ProfileStore, logger core.Logger) *MailNotifier {
	return &MailNotifier{
		mailSvc:  mailSvc,
		catalog:  catalog,
		profiles: profiles,
		logger:   logger,
	}
}

func (n *MailNotifier) ApplicationPromoted(ctx context.Context, app Application) {
	stu, err := n.profiles.GetStudent(ctx, app.StudentID)
	if err != nil {
		n.logger.Warn("promotion email: getting student", err, map[string]interface{}{"application": app.ID})
		return
	}
	course, err := n.catalog.GetCourse(ctx, app.CourseID)
	if err != nil {
		n.logger.Warn("promotion email: getting course", err, map[string]interface{}{"application": app.ID})
		return
	}
	inst, err := n.catalog.GetInstitution(ctx, app.InstitutionID)
	if err != nil {
		n.logger.Warn("promotion email: getting institution", err, map[string]interface{}{"application": app.ID})
		return
	}

	n.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: stu.Name, Address: stu.Email}},
		Subject:      "You have been admitted to " + course.Name,
		TemplateName: promotionTemplate,
		TemplateData: promotionMailData{
			Name:            stu.Name,
			CourseName:      course.Name,
			InstitutionName: inst.Name,
		},
	})
}
