package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/argon2"
)

var _ = ginkgo.Describe("PasswordHasher", func() {
	ginkgo.It("should record its cost parameters in the hash", func() {
		hash, salt, err := NewPasswordHasher(cheapParams).Hash(goodPassword)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(hash).To(gomega.HavePrefix("$argon2id$v=19$m=1024,t=1,p=1$"))
		gomega.Expect(hash).ToNot(gomega.ContainSubstring(salt))
	})

	ginkgo.It("should verify with the parameters the hash was made with", func() {
		// Given
		old := NewPasswordHasher(cheapParams)
		hash, salt, err := old.Hash(goodPassword)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		// When
		stronger := cheapParams
		stronger.Memory = 2048
		stronger.Iterations = 2
		current := NewPasswordHasher(stronger)

		// Then
		gomega.Expect(current.Verify(goodPassword, hash, salt)).To(gomega.Succeed())
		gomega.Expect(errors.Is(current.Verify("something else entirely", hash, salt), ErrPasswordMismatch)).To(gomega.BeTrue())
	})

	ginkgo.It("should still accept a bare key made with the current parameters", func() {
		rawSalt := make([]byte, 16)
		_, err := rand.Read(rawSalt)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		key := argon2.IDKey([]byte(goodPassword), rawSalt, cheapParams.Iterations, cheapParams.Memory, cheapParams.Parallelism, cheapParams.KeyLength)

		err = NewPasswordHasher(cheapParams).Verify(goodPassword,
			base64.RawStdEncoding.EncodeToString(key), base64.RawStdEncoding.EncodeToString(rawSalt))

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
	})

	ginkgo.DescribeTable("should reject malformed hashes",
		func(hash string, expected error) {
			_, salt, err := NewPasswordHasher(cheapParams).Hash(goodPassword)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			err = NewPasswordHasher(cheapParams).Verify(goodPassword, hash, salt)

			gomega.Expect(errors.Is(err, expected)).To(gomega.BeTrue(), "got %v", err)
		},
		ginkgo.Entry("wrong algorithm", "$argon2i$v=19$m=1024,t=1,p=1$AAAA", ErrInvalidPasswordHash),
		ginkgo.Entry("missing key", "$argon2id$v=19$m=1024,t=1,p=1", ErrInvalidPasswordHash),
		ginkgo.Entry("garbled parameters", "$argon2id$v=19$memory$AAAA", ErrInvalidPasswordHash),
		ginkgo.Entry("other version", "$argon2id$v=16$m=1024,t=1,p=1$AAAA", ErrIncompatiblePasswordVersion),
		ginkgo.Entry("not base64", strings.Repeat("!", 8), ErrInvalidPasswordHash),
	)
})
