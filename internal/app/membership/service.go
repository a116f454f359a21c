// internal/app/membership/service.go
package membership

import (
	"context"
	"time"

	userstore "github.com/dalemusser/memberhub/internal/app/store/users"
	"github.com/dalemusser/memberhub/internal/app/system/blobstore"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegistrationRepo is the registration persistence the service needs.
type RegistrationRepo interface {
	Create(ctx context.Context, reg models.Registration) (models.Registration, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Registration, error)
	List(ctx context.Context) ([]models.Registration, error)
	ExistsActiveEmail(ctx context.Context, email string) (bool, error)
	MarkApproved(ctx context.Context, id primitive.ObjectID, uniqueID, memberID string) error
	MarkRejected(ctx context.Context, id primitive.ObjectID) error
	SetMembershipValidity(ctx context.Context, id primitive.ObjectID, year string) error
}

// UserRepo is the user persistence the service needs.
type UserRepo interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetWithPassword(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, f userstore.ListFilter) ([]models.User, error)
	Count(ctx context.Context, q string) (int64, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]string) error
	SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error
	SetValidityByRegistration(ctx context.Context, regID primitive.ObjectID, year string) (bool, error)
}

// Counters hands out sequence values.
type Counters interface {
	Next(ctx context.Context, name string, floor int64) (int64, error)
}

// Outbox queues outbound mail.
type Outbox interface {
	Enqueue(ctx context.Context, t models.EmailTask) (models.EmailTask, error)
}

// Transactor runs fn as one unit of work.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Deps are the collaborators of a Service.
type Deps struct {
	Registrations RegistrationRepo
	Users         UserRepo
	Counters      Counters
	Outbox        Outbox
	Blobs         blobstore.Store
	Txn           Transactor
	Log           *zap.Logger

	// Kick wakes the mail dispatcher after an enqueue. Optional.
	Kick func()
}

// Options tune a Service.
type Options struct {
	SiteName     string
	SupportEmail string
	BaseURL      string

	// SignedURLExpiry bounds how long a resolved photo or logo URL stays valid.
	SignedURLExpiry time.Duration

	// BcryptCost defaults to 12. Tests lower it to bcrypt.MinCost.
	BcryptCost int
}

// Service implements registration intake, approval, the member directory
// and password changes.
type Service struct {
	regs     RegistrationRepo
	users    UserRepo
	counters Counters
	outbox   Outbox
	blobs    blobstore.Store
	signer   models.URLSigner
	txn      Transactor
	log      *zap.Logger
	kick     func()

	opts Options
	now  func() time.Time
}

const defaultBcryptCost = 12

// New builds a Service.
func New(d Deps, opts Options) *Service {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = defaultBcryptCost
	}
	if opts.BcryptCost < bcrypt.MinCost {
		opts.BcryptCost = bcrypt.MinCost
	}
	if opts.SignedURLExpiry <= 0 {
		opts.SignedURLExpiry = blobstore.DefaultExpiry
	}
	if opts.SiteName == "" {
		opts.SiteName = "MemberHub"
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	kick := d.Kick
	if kick == nil {
		kick = func() {}
	}
	return &Service{
		regs:     d.Registrations,
		users:    d.Users,
		counters: d.Counters,
		outbox:   d.Outbox,
		blobs:    d.Blobs,
		signer:   blobstore.Signer{Store: d.Blobs},
		txn:      d.Txn,
		log:      log,
		kick:     kick,
		opts:     opts,
		now:      time.Now,
	}
}

// runTx runs fn in the configured transactor, or directly when none is set.
func (s *Service) runTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txn == nil {
		return fn(ctx)
	}
	return s.txn.Run(ctx, fn)
}

// enqueue queues msg and wakes the dispatcher. Failures are logged; mail
// never fails the operation that triggered it.
func (s *Service) enqueue(ctx context.Context, task models.EmailTask) {
	if s.outbox == nil {
		return
	}
	if _, err := s.outbox.Enqueue(ctx, task); err != nil {
		s.log.Error("enqueue email failed",
			zap.String("kind", task.Kind),
			zap.String("to", task.To),
			zap.Error(err))
		return
	}
	s.kick()
}
