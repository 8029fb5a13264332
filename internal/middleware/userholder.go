package middleware

import "context"

type userHolder struct {
	id  int
	set bool
}

const userHolderKey key = "user_holder"

func withUserHolder(ctx context.Context, h *userHolder) context.Context {
	return context.WithValue(ctx, userHolderKey, h)
}

func recordUser(ctx context.Context, id int) {
	if h, ok := ctx.Value(userHolderKey).(*userHolder); ok {
		h.id = id
		h.set = true
	}
}
