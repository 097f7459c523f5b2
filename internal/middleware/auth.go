package middleware

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/jwt"
	"github.com/questx-lab/raffle/pkg/router"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

// OperatorAuth accepts requests carrying a valid operator bearer token and
// stores the operator address as the request user id.
func OperatorAuth(verifier *jwt.Verifier[model.OperatorToken]) router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		authorization := xcontext.HTTPRequest(ctx).Header.Get("Authorization")
		auth, token, found := strings.Cut(authorization, " ")
		if !found || auth != "Bearer" || token == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		info, err := verifier.Verify(token)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot verify operator token: %v", err)
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		if !common.IsHexAddress(info.Address) {
			return nil, errorx.New(errorx.Unauthenticated, "Invalid operator address in token")
		}

		return xcontext.WithRequestUserID(ctx, common.HexToAddress(info.Address).Hex()), nil
	}
}
