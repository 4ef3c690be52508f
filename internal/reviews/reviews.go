package reviews

import (
	"context"
	"fmt"
	"strings"

	"github.com/minhvu-dev/teahouse/pkg/validate"
)

// Submission is a product review as collected by the review view.
type Submission struct {
	ProductID int64  `json:"productId" validate:"gt=0"`
	OrderID   *int64 `json:"orderId,omitempty"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
	Comment   string `json:"comment"`
}

// Poster is the slice of the backend client the review service needs.
type Poster interface {
	Post(ctx context.Context, path string, body, out any) error
}

// Service submits product reviews.
type Service struct {
	api Poster
}

func NewService(api Poster) (*Service, error) {
	if api == nil {
		return nil, fmt.Errorf("api client is required")
	}
	return &Service{api: api}, nil
}

// Submit validates and sends one review. The comment is trimmed before
// it leaves the client.
func (s *Service) Submit(ctx context.Context, submission Submission) error {
	submission.Comment = strings.TrimSpace(submission.Comment)
	if err := validate.Struct(submission); err != nil {
		return err
	}
	return s.api.Post(ctx, "/reviews", submission, nil)
}
