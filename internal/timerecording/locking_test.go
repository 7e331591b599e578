package timerecording

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/auth"
	datamodel "github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
	"github.com/frahmantamala/timekeeper/internal/core/date"
	"github.com/frahmantamala/timekeeper/internal/persistence"
)

// addWhileHoldingEntries stores e directly while the time entry lock is
// held. start runs once the lock is taken and the store pauses long enough
// for whatever it launched to block on the lock.
func addWhileHoldingEntries(db *persistence.Database, e datamodel.TimeEntryPreDatabase, start func()) {
	err := db.TimeEntries().ActOn(func(entries *persistence.ChangeTrackingSet[datamodel.TimeEntry]) error {
		start()
		time.Sleep(50 * time.Millisecond)
		entries.Add(e.WithID(datamodel.TimeEntryID(entries.NextIndex())))
		return nil
	})
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
}

var _ = ginkgo.Describe("Reference integrity under concurrency", func() {
	var (
		db     *persistence.Database
		system *Service
		admin  *Service
		alice  datamodel.Employee
		carol  datamodel.Employee
		widget datamodel.Project
	)

	ginkgo.BeforeEach(func() {
		lg := quietLogger()
		db = persistence.NewInMemory(lg)
		system = NewService(db, auth.NewRolesChecker(lg), user.System, nil, lg)

		var err error
		alice, err = system.CreateEmployee("Alice")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		carol, err = system.CreateEmployee("Carol")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		widget, err = system.CreateProject("Widgets")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		admin = system.ChangeUser(userFor(alice.ID, user.RoleAdmin))
	})

	ginkgo.It("should see an entry added while a project deletion waits", func() {
		// Given
		var (
			result DeleteProjectResult
			err    error
			done   = make(chan struct{})
		)
		launch := func() {
			go func() {
				defer ginkgo.GinkgoRecover()
				defer close(done)
				result, err = admin.DeleteProject(widget)
			}()
		}

		// When
		addWhileHoldingEntries(db, entry(alice.ID, widget.ID, 30, "2024-01-02"), launch)
		<-done

		// Then
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(result).To(gomega.Equal(DeleteProjectUsed))
		_, ok := admin.FindProjectByID(widget.ID)
		gomega.Expect(ok).To(gomega.BeTrue())
	})

	ginkgo.It("should see an entry added while an employee deletion waits", func() {
		// Given
		var (
			deleted bool
			err     error
			done    = make(chan struct{})
		)
		launch := func() {
			go func() {
				defer ginkgo.GinkgoRecover()
				defer close(done)
				deleted, err = admin.DeleteEmployee(carol)
			}()
		}

		// When
		addWhileHoldingEntries(db, entry(carol.ID, widget.ID, 30, "2024-01-02"), launch)
		<-done

		// Then
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(deleted).To(gomega.BeFalse())
		_, ok := admin.FindEmployeeByID(carol.ID)
		gomega.Expect(ok).To(gomega.BeTrue())
	})

	ginkgo.It("should never leave an entry pointing at a deleted project", func() {
		// Given
		asAlice := system.ChangeUser(userFor(alice.ID, user.RoleRegular))
		var projects []datamodel.Project
		for i := 0; i < 25; i++ {
			p, err := system.CreateProject(fmt.Sprintf("Project %d", i))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			projects = append(projects, p)
		}

		// When
		var wg sync.WaitGroup
		for _, p := range projects {
			wg.Add(2)
			go func(p datamodel.Project) {
				defer wg.Done()
				defer ginkgo.GinkgoRecover()
				_, err := asAlice.CreateTimeEntry(entry(alice.ID, p.ID, 5, "2024-01-02"))
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
			}(p)
			go func(p datamodel.Project) {
				defer wg.Done()
				defer ginkgo.GinkgoRecover()
				_, err := admin.DeleteProject(p)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
			}(p)
		}
		wg.Wait()

		// Then
		for _, e := range db.TimeEntries().GetAll() {
			_, ok := admin.FindProjectByID(e.ProjectID)
			gomega.Expect(ok).To(gomega.BeTrue(), "entry %d points at project %d", e.ID, e.ProjectID)
		}
	})
})

var _ = ginkgo.Describe("Deleting with a forged argument", func() {
	var (
		db       *persistence.Database
		system   *Service
		asAlice  *Service
		alice    datamodel.Employee
		bob      datamodel.Employee
		recorded datamodel.TimeEntry
	)

	ginkgo.BeforeEach(func() {
		lg := quietLogger()
		db = persistence.NewInMemory(lg)
		system = NewService(db, auth.NewRolesChecker(lg), user.System, nil, lg)

		var err error
		alice, err = system.CreateEmployee("Alice")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		bob, err = system.CreateEmployee("Bob")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		widget, err := system.CreateProject("Widgets")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		asAlice = system.ChangeUser(userFor(alice.ID, user.RoleRegular))
		result, err := asAlice.CreateTimeEntry(entry(alice.ID, widget.ID, 60, "2024-01-02"))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		recorded = result.Entry
	})

	ginkgo.It("should judge the lock on the stored date", func() {
		_, err := asAlice.SubmitTimePeriod(date.PeriodForDate(recorded.Date))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		forged := recorded
		forged.Date = day("2024-02-14")
		_, err = asAlice.DeleteTimeEntry(forged)

		gomega.Expect(errors.Is(err, internal.ErrPeriodLocked)).To(gomega.BeTrue())
		gomega.Expect(db.TimeEntries().GetAll()).To(gomega.HaveLen(1))
	})

	ginkgo.It("should judge ownership on the stored employee", func() {
		asBob := system.ChangeUser(userFor(bob.ID, user.RoleRegular))

		forged := recorded
		forged.EmployeeID = bob.ID
		_, err := asBob.DeleteTimeEntry(forged)

		gomega.Expect(errors.Is(err, internal.ErrUnpermittedOperation)).To(gomega.BeTrue())
		gomega.Expect(db.TimeEntries().GetAll()).To(gomega.HaveLen(1))
	})
})
