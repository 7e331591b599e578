package persistence_test

import (
	"errors"
	"sort"
	"sync"

	"github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
	"github.com/frahmantamala/timekeeper/internal/persistence"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// createEmployee is the usual read-max-then-insert pattern callers use.
func createEmployee(db *persistence.Database, name string) timerecording.Employee {
	var created timerecording.Employee
	err := db.Employees().ActOn(func(s *persistence.ChangeTrackingSet[timerecording.Employee]) error {
		e, err := timerecording.NewEmployee(timerecording.EmployeeID(s.NextIndex()), name)
		if err != nil {
			return err
		}
		s.Add(e)
		created = e
		return nil
	})
	Expect(err).NotTo(HaveOccurred())
	return created
}

type recordingSink struct {
	mu   sync.Mutex
	jobs []persistence.WriteJob
}

func (r *recordingSink) Enqueue(job persistence.WriteJob) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
}

var _ = Describe("Database", func() {
	var db *persistence.Database

	BeforeEach(func() {
		db = persistence.NewInMemory(quietLogger())
	})

	It("starts empty", func() {
		Expect(db.IsEmpty()).To(BeTrue())
		createEmployee(db, "Alice")
		Expect(db.IsEmpty()).To(BeFalse())
		Expect(db.Sizes()).To(HaveKeyWithValue(timerecording.EmployeesDirectory, 1))
	})

	It("assigns distinct increasing ids under concurrent creates", func() {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				createEmployee(db, "Someone")
			}()
		}
		wg.Wait()

		all := db.Employees().GetAll()
		Expect(all).To(HaveLen(50))
		ids := make([]int, 0, len(all))
		for _, e := range all {
			ids = append(ids, int(e.ID))
		}
		Expect(sort.IntsAreSorted(ids)).To(BeTrue())
		Expect(ids[0]).To(Equal(1))
		Expect(ids[49]).To(Equal(50))
	})

	It("returns the error from the action", func() {
		boom := errors.New("boom")
		err := db.Projects().ActOn(func(*persistence.ChangeTrackingSet[timerecording.Project]) error {
			return boom
		})
		Expect(err).To(MatchError(boom))
	})

	It("finds items without taking the collection lock", func() {
		createEmployee(db, "Alice")
		bob := createEmployee(db, "Bob")

		err := db.Employees().ActOn(func(*persistence.ChangeTrackingSet[timerecording.Employee]) error {
			found, ok := db.Employees().Get(func(e timerecording.Employee) bool { return e.Name == "Bob" })
			Expect(ok).To(BeTrue())
			Expect(found).To(Equal(bob))
			return nil
		})
		Expect(err).NotTo(HaveOccurred())

		_, ok := db.Employees().Get(func(e timerecording.Employee) bool { return e.Name == "Nobody" })
		Expect(ok).To(BeFalse())
		Expect(db.Employees().Find(func(e timerecording.Employee) bool { return e.ID > 1 })).To(ConsistOf(bob))
	})

	It("panics when a collection is asked for with the wrong type", func() {
		Expect(func() { persistence.Access[user.User](db, timerecording.EmployeesDirectory) }).To(Panic())
		Expect(func() { persistence.Access[user.User](db, "nope") }).To(Panic())
	})

	Describe("Copy", func() {
		It("is detached from the original", func() {
			alice := createEmployee(db, "Alice")
			bob := createEmployee(db, "Bob")
			Expect(db.Employees().ActOn(func(s *persistence.ChangeTrackingSet[timerecording.Employee]) error {
				s.Remove(bob)
				return nil
			})).To(Succeed())

			copied := db.Copy()
			Expect(copied.Employees().GetAll()).To(ConsistOf(alice))

			created := createEmployee(copied, "Carol")
			Expect(created.ID).To(Equal(timerecording.EmployeeID(3)))
			Expect(db.Employees().GetAll()).To(ConsistOf(alice))

			copied.Stop()
		})
	})
})

var _ = Describe("DataAccess journaling", func() {
	It("forwards changes to the sink in order", func() {
		sink := &recordingSink{}
		db := persistence.NewWithSink(sink, quietLogger())

		alice := createEmployee(db, "Alice")
		Expect(db.Employees().ActOn(func(s *persistence.ChangeTrackingSet[timerecording.Employee]) error {
			renamed, _ := timerecording.NewEmployee(alice.ID, "Alicia")
			s.Replace(alice, renamed)
			return nil
		})).To(Succeed())

		Expect(sink.jobs).To(HaveLen(3))
		Expect(sink.jobs[0]).To(Equal(persistence.WriteJob{Directory: "employees", Index: 1, Content: "id=1\nname=Alice\n"}))
		Expect(sink.jobs[1]).To(Equal(persistence.WriteJob{Directory: "employees", Index: 1, Delete: true}))
		Expect(sink.jobs[2].Content).To(Equal("id=1\nname=Alicia\n"))
	})

	It("journals what was applied before an error", func() {
		sink := &recordingSink{}
		db := persistence.NewWithSink(sink, quietLogger())

		err := db.Employees().ActOn(func(s *persistence.ChangeTrackingSet[timerecording.Employee]) error {
			e, _ := timerecording.NewEmployee(1, "Alice")
			s.Add(e)
			return errors.New("late failure")
		})
		Expect(err).To(HaveOccurred())
		Expect(sink.jobs).To(HaveLen(1))
		Expect(db.Employees().GetAll()).To(HaveLen(1))
	})
})
