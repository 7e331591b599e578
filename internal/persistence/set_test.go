package persistence_test

import (
	"sync"

	"github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
	"github.com/frahmantamala/timekeeper/internal/persistence"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func employee(id int64, name string) timerecording.Employee {
	e, err := timerecording.NewEmployee(timerecording.EmployeeID(id), name)
	Expect(err).NotTo(HaveOccurred())
	return e
}

var _ = Describe("ConcurrentSet", func() {
	var set *persistence.ConcurrentSet[string]

	BeforeEach(func() {
		set = persistence.NewConcurrentSet[string]()
	})

	It("uses value equality", func() {
		Expect(set.Add("a")).To(BeTrue())
		Expect(set.Add("a")).To(BeFalse())
		Expect(set.Len()).To(Equal(1))

		Expect(set.Remove("b")).To(BeFalse())
		Expect(set.Remove("a")).To(BeTrue())
		Expect(set.Len()).To(BeZero())
	})

	It("hands out snapshots", func() {
		set.Add("a")
		snapshot := set.ToList()
		set.Add("b")

		Expect(snapshot).To(ConsistOf("a"))
		Expect(set.ToList()).To(ConsistOf("a", "b"))

		set.Clear()
		Expect(set.ToList()).To(BeEmpty())
	})

	It("survives concurrent writers", func() {
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				set.Add(string(rune('A' + n)))
			}(i)
		}
		wg.Wait()

		Expect(set.Len()).To(Equal(100))
	})
})

var _ = Describe("ChangeTrackingSet", func() {
	var set *persistence.ChangeTrackingSet[timerecording.Employee]

	BeforeEach(func() {
		set = persistence.NewChangeTrackingSet[timerecording.Employee]()
	})

	It("reports each change exactly once", func() {
		set.Add(employee(1, "Alice"))

		first := set.ChangedData()
		Expect(first).To(HaveLen(1))
		Expect(first[0].Action).To(Equal(persistence.Created))

		Expect(set.ChangedData()).To(BeEmpty())
	})

	It("keeps changes in the order they happened", func() {
		alice := employee(1, "Alice")
		renamed := employee(1, "Alicia")

		set.Add(alice)
		set.Replace(alice, renamed)
		set.Remove(renamed)

		changes := set.ChangedData()
		Expect(changes).To(Equal([]persistence.Change[timerecording.Employee]{
			{Item: alice, Action: persistence.Created},
			{Item: alice, Action: persistence.Deleted},
			{Item: renamed, Action: persistence.Created},
			{Item: renamed, Action: persistence.Deleted},
		}))
	})

	It("logs nothing for no-op mutations", func() {
		alice := employee(1, "Alice")
		set.Add(alice)
		set.ClearModifications()

		Expect(set.Add(alice)).To(BeFalse())
		Expect(set.Remove(employee(2, "Bob"))).To(BeFalse())
		Expect(set.Replace(employee(3, "Carol"), employee(3, "Caroline"))).To(BeFalse())
		Expect(set.ChangedData()).To(BeEmpty())
	})

	It("does not track bulk loads", func() {
		Expect(set.AddWithoutTracking(employee(7, "Alice"))).To(BeTrue())

		Expect(set.ChangedData()).To(BeEmpty())
		Expect(set.NextIndex()).To(Equal(int64(8)))
	})

	It("never hands out an index twice", func() {
		Expect(set.NextIndex()).To(Equal(int64(1)))
		set.Add(employee(1, "Alice"))
		set.Add(employee(2, "Bob"))
		set.Remove(employee(2, "Bob"))

		Expect(set.NextIndex()).To(Equal(int64(3)))

		added := set.AddAll([]timerecording.Employee{employee(3, "Carol"), employee(4, "Dan")})
		Expect(added).To(Equal(2))
		Expect(set.NextIndex()).To(Equal(int64(5)))
	})
})
