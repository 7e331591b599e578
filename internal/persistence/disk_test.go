package persistence_test

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/core/date"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/system"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
	"github.com/frahmantamala/timekeeper/internal/persistence"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Disk persistence", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	start := func() *persistence.Database {
		db, err := persistence.StartWithDiskPersistence(dir, quietLogger(), persistence.WithQueueSize(10))
		Expect(err).NotTo(HaveOccurred())
		return db
	}

	It("loads back what it wrote, including deletions", func() {
		db := start()
		first := createEmployee(db, "Alice")
		second := createEmployee(db, "Bob")
		Expect(db.Employees().ActOn(func(s *persistence.ChangeTrackingSet[timerecording.Employee]) error {
			s.Remove(first)
			return nil
		})).To(Succeed())
		db.Stop()

		Expect(filepath.Join(dir, "employees", "1.db")).NotTo(BeAnExistingFile())
		Expect(filepath.Join(dir, "employees", "2.db")).To(BeAnExistingFile())

		reloaded := start()
		defer reloaded.Stop()
		Expect(reloaded.Employees().GetAll()).To(Equal([]timerecording.Employee{second}))

		third := createEmployee(reloaded, "Carol")
		Expect(third.ID).To(Equal(timerecording.EmployeeID(3)))
	})

	It("does not hand out the index of a deleted newest item after a restart", func() {
		db := start()
		createEmployee(db, "Alice")
		newest := createEmployee(db, "Bob")
		Expect(db.Employees().ActOn(func(s *persistence.ChangeTrackingSet[timerecording.Employee]) error {
			s.Remove(newest)
			return nil
		})).To(Succeed())
		db.Stop()

		Expect(filepath.Join(dir, "employees", "highwater")).To(BeAnExistingFile())

		reloaded := start()
		defer reloaded.Stop()
		next := createEmployee(reloaded, "Carol")
		Expect(next.ID).To(Equal(timerecording.EmployeeID(3)))
	})

	It("keeps the mark across several restarts", func() {
		db := start()
		only := createEmployee(db, "Alice")
		Expect(db.Employees().ActOn(func(s *persistence.ChangeTrackingSet[timerecording.Employee]) error {
			s.Remove(only)
			return nil
		})).To(Succeed())
		db.Stop()

		start().Stop()

		reloaded := start()
		defer reloaded.Stop()
		Expect(reloaded.IsEmpty()).To(BeTrue())
		Expect(createEmployee(reloaded, "Bob").ID).To(Equal(timerecording.EmployeeID(2)))
	})

	It("refuses an unreadable high water mark", func() {
		Expect(os.MkdirAll(filepath.Join(dir, "employees"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "employees", "highwater"), []byte("lots"), 0o644)).To(Succeed())

		_, err := persistence.StartWithDiskPersistence(dir, quietLogger())

		var corrupt *persistence.CorruptionError
		Expect(errors.As(err, &corrupt)).To(BeTrue())
	})

	It("round-trips every collection", func() {
		db := start()
		alice := createEmployee(db, "Alice")
		d, _ := date.Make("2024-01-02")

		project, _ := timerecording.NewProject(1, "Widgets")
		pre, _ := timerecording.NewTimeEntryPreDatabase(alice.ID, project.ID, 480, d, "line\nbreak")
		entry := pre.WithID(1)
		period, _ := timerecording.NewSubmittedPeriod(1, alice.ID, date.PeriodForDate(d), timerecording.Unapproved)
		u, _ := user.NewUser(1, "alice", "hash", "salt", timerecording.SomeEmployee(alice.ID), user.RoleAdmin)
		session, _ := user.NewSession(1, "token", u.ID, time.Now())
		invitation, _ := user.NewInvitation(1, alice.ID, "code", time.Now())
		config, _ := system.NewSystemConfiguration(1, system.LogSettings{Audit: true, Trace: true})

		add := func(err error) { Expect(err).NotTo(HaveOccurred()) }
		add(db.Projects().ActOn(func(s *persistence.ChangeTrackingSet[timerecording.Project]) error { s.Add(project); return nil }))
		add(db.TimeEntries().ActOn(func(s *persistence.ChangeTrackingSet[timerecording.TimeEntry]) error { s.Add(entry); return nil }))
		add(db.SubmittedPeriods().ActOn(func(s *persistence.ChangeTrackingSet[timerecording.SubmittedPeriod]) error { s.Add(period); return nil }))
		add(db.Users().ActOn(func(s *persistence.ChangeTrackingSet[user.User]) error { s.Add(u); return nil }))
		add(db.Sessions().ActOn(func(s *persistence.ChangeTrackingSet[user.Session]) error { s.Add(session); return nil }))
		add(db.Invitations().ActOn(func(s *persistence.ChangeTrackingSet[user.Invitation]) error { s.Add(invitation); return nil }))
		add(db.SystemConfigurations().ActOn(func(s *persistence.ChangeTrackingSet[system.SystemConfiguration]) error { s.Add(config); return nil }))

		snapshot := db.Copy()
		db.Stop()

		reloaded := start()
		defer reloaded.Stop()
		Expect(reloaded.Sizes()).To(Equal(snapshot.Sizes()))
		Expect(reloaded.TimeEntries().GetAll()).To(Equal([]timerecording.TimeEntry{entry}))
		Expect(reloaded.SubmittedPeriods().GetAll()).To(Equal([]timerecording.SubmittedPeriod{period}))
		Expect(reloaded.Users().GetAll()).To(Equal([]user.User{u}))
		Expect(reloaded.Sessions().GetAll()).To(Equal([]user.Session{session}))
		Expect(reloaded.Invitations().GetAll()).To(Equal([]user.Invitation{invitation}))
		Expect(reloaded.SystemConfigurations().GetAll()).To(Equal([]system.SystemConfiguration{config}))
	})

	It("refuses to start over a corrupt file", func() {
		Expect(os.MkdirAll(filepath.Join(dir, "projects"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "projects", "1.db"), []byte("id=1\nnonsense\n"), 0o644)).To(Succeed())

		_, err := persistence.StartWithDiskPersistence(dir, quietLogger())

		var corrupt *persistence.CorruptionError
		Expect(errors.As(err, &corrupt)).To(BeTrue())
		Expect(corrupt.Path).To(HaveSuffix("1.db"))
	})

	It("refuses a file whose name does not match its index", func() {
		Expect(os.MkdirAll(filepath.Join(dir, "employees"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "employees", "2.db"), []byte("id=1\nname=Alice\n"), 0o644)).To(Succeed())

		_, err := persistence.StartWithDiskPersistence(dir, quietLogger())
		Expect(err).To(BeAssignableToTypeOf(&persistence.CorruptionError{}))
	})

	It("refuses a session whose user does not exist", func() {
		Expect(os.MkdirAll(filepath.Join(dir, "sessions"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "sessions", "1.db"), []byte("sid=1\ns=abc\nid=9\ne=0\n"), 0o644)).To(Succeed())

		_, err := persistence.StartWithDiskPersistence(dir, quietLogger())
		Expect(err).To(MatchError(ContainSubstring("unknown user")))
		Expect(errors.Is(err, internal.ErrUnknownReference)).To(BeTrue())
	})

	It("ignores leftover temp files", func() {
		Expect(os.MkdirAll(filepath.Join(dir, "employees"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "employees", "1.db.tmp"), []byte("half"), 0o644)).To(Succeed())

		db := start()
		defer db.Stop()
		Expect(db.IsEmpty()).To(BeTrue())
	})

	It("can be stopped twice and drops writes after stopping", func() {
		db := start()
		db.Stop()
		db.Stop()

		createEmployee(db, "Late")
		Expect(filepath.Join(dir, "employees", "1.db")).NotTo(BeAnExistingFile())
	})

	It("drains the queue before Stop returns", func() {
		db := start()
		for i := 0; i < 100; i++ {
			createEmployee(db, "Busy")
		}
		db.Stop()

		entries, err := os.ReadDir(filepath.Join(dir, "employees"))
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(100))
	})
})
