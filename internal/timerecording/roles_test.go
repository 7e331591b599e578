package timerecording

import (
	"errors"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/auth"
	datamodel "github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
	"github.com/frahmantamala/timekeeper/internal/core/date"
	"github.com/frahmantamala/timekeeper/internal/persistence"
)

type roleFixture struct {
	alice  datamodel.Employee
	bob    datamodel.Employee
	spare  datamodel.Project
	widget datamodel.Project
	week   date.TimePeriod
}

type gatedCall func(svc *Service, f roleFixture) error

var gatedCalls = map[string]gatedCall{
	"CreateEmployee": func(svc *Service, _ roleFixture) error {
		_, err := svc.CreateEmployee("Zed")
		return err
	},
	"CreateProject": func(svc *Service, _ roleFixture) error {
		_, err := svc.CreateProject("Gadgets")
		return err
	},
	"DeleteEmployee": func(svc *Service, f roleFixture) error {
		_, err := svc.DeleteEmployee(f.bob)
		return err
	},
	"DeleteProject": func(svc *Service, f roleFixture) error {
		_, err := svc.DeleteProject(f.spare)
		return err
	},
	"ApproveTimesheet": func(svc *Service, f roleFixture) error {
		return svc.ApproveTimesheet(f.alice.ID, f.week.Start)
	},
	"CreateTimeEntry": func(svc *Service, f roleFixture) error {
		_, err := svc.CreateTimeEntry(entry(f.alice.ID, f.widget.ID, 15, "2024-02-06"))
		return err
	},
	"SubmitTimePeriod": func(svc *Service, _ roleFixture) error {
		_, err := svc.SubmitTimePeriod(date.PeriodForDate(day("2024-03-05")))
		return err
	},
	"GetAllEntriesForEmployee": func(svc *Service, f roleFixture) error {
		_, err := svc.GetAllEntriesForEmployee(f.alice.ID)
		return err
	},
	"ListAllProjects": func(svc *Service, _ roleFixture) error {
		_, err := svc.ListAllProjects()
		return err
	},
	"ListAllEmployees": func(svc *Service, _ roleFixture) error {
		_, err := svc.ListAllEmployees()
		return err
	},
}

var _ = ginkgo.Describe("Role gates on service operations", func() {
	var (
		system *Service
		f      roleFixture
	)

	ginkgo.BeforeEach(func() {
		lg := quietLogger()
		db := persistence.NewInMemory(lg)
		system = NewService(db, auth.NewRolesChecker(lg), user.System, nil, lg)

		var err error
		f.alice, err = system.CreateEmployee("Alice")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		f.bob, err = system.CreateEmployee("Bob")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		f.widget, err = system.CreateProject("Widgets")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		f.spare, err = system.CreateProject("Spare")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		f.week = date.PeriodForDate(day("2024-01-02"))
		_, err = system.ChangeUser(userFor(f.alice.ID, user.RoleRegular)).SubmitTimePeriod(f.week)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
	})

	ginkgo.DescribeTable("should permit exactly the expected calls",
		func(role user.Role, permitted ...string) {
			allowed := map[string]bool{}
			for _, name := range permitted {
				allowed[name] = true
			}
			svc := system.ChangeUser(userFor(f.alice.ID, role))

			for name, call := range gatedCalls {
				err := call(svc, f)
				refused := errors.Is(err, internal.ErrUnpermittedOperation)
				gomega.Expect(refused).To(gomega.Equal(!allowed[name]), "%s as %s: %v", name, role, err)
			}
		},
		ginkgo.Entry("ADMIN", user.RoleAdmin,
			"CreateEmployee", "CreateProject", "DeleteEmployee", "DeleteProject", "ApproveTimesheet",
			"CreateTimeEntry", "SubmitTimePeriod", "GetAllEntriesForEmployee", "ListAllProjects", "ListAllEmployees"),
		ginkgo.Entry("APPROVER", user.RoleApprover,
			"ApproveTimesheet", "CreateTimeEntry", "SubmitTimePeriod", "GetAllEntriesForEmployee",
			"ListAllProjects", "ListAllEmployees"),
		ginkgo.Entry("REGULAR", user.RoleRegular,
			"CreateTimeEntry", "SubmitTimePeriod", "GetAllEntriesForEmployee", "ListAllProjects", "ListAllEmployees"),
		ginkgo.Entry("SYSTEM", user.RoleSystem,
			"CreateEmployee", "CreateProject", "ListAllEmployees"),
		ginkgo.Entry("NONE", user.RoleNone,
			"ListAllEmployees"),
	)
})
