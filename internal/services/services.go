package services

import (
	"log/slog"

	"github.com/podium-events/podium/internal/config"
	"github.com/podium-events/podium/internal/db"
	"github.com/podium-events/podium/internal/services/activity"
	"github.com/podium-events/podium/internal/services/cfp"
	"github.com/podium-events/podium/internal/services/event"
	"github.com/podium-events/podium/internal/services/federation"
	"github.com/podium-events/podium/internal/services/mail"
	"github.com/podium-events/podium/internal/services/schedule"
	"github.com/podium-events/podium/internal/services/submission"
	"github.com/podium-events/podium/internal/services/team"
	"github.com/podium-events/podium/internal/services/user"
)

type Services struct {
	User       *user.UserService
	Team       *team.TeamService
	Event      *event.EventService
	CfP        *cfp.CfPService
	Submission *submission.SubmissionService
	Schedule   *schedule.ScheduleService
	Mail       *mail.MailService
	Activity   *activity.ActivityService
	Federation *federation.FederationService
}

func NewServices(conf *config.Config) *Services {
	dbconn := db.NewConn(conf)

	var sender mail.Sender
	if conf.SMTP_HOST != "" {
		sender = mail.NewSMTPSender(conf)
	} else {
		slog.Warn("SMTP_HOST not set, mail delivery is log only")
		sender = mail.LogSender{}
	}

	mailSvc := mail.NewMailService(mail.NewMailRepository(dbconn), sender, conf.MAIL_FROM)
	activitySvc := activity.NewActivityService(activity.NewActivityRepository(dbconn))
	federationSvc := federation.NewFederationService(federation.NewFederationRepository(dbconn))
	cfpSvc := cfp.NewCfPService(cfp.NewCfPRepository(dbconn))

	return &Services{
		User: user.NewUserService(user.NewUserRepo(dbconn), mailSvc, activitySvc, federationSvc, user.Defaults{
			Locale:   conf.DEFAULT_LOCALE,
			Timezone: conf.DEFAULT_TIMEZONE,
			BaseURL:  conf.BASE_URL,
		}),
		Team:       team.NewTeamService(team.NewTeamRepo(dbconn)),
		Event:      event.NewEventService(event.NewEventRepo(dbconn)),
		CfP:        cfpSvc,
		Submission: submission.NewSubmissionService(submission.NewSubmissionRepository(dbconn), cfpSvc),
		Schedule:   schedule.NewScheduleService(schedule.NewScheduleRepository(dbconn)),
		Mail:       mailSvc,
		Activity:   activitySvc,
		Federation: federationSvc,
	}
}
