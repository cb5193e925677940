// Package oracle reads reference prices from the exchange's redis price
// list. It backs the swap core's oracle fallback for currencies that have no
// pool-based price path.
package oracle

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Keys follow the exchange convention price:<SYMBOL>:<BASE>, value is the
// decimal price of one unit of SYMBOL in BASE.
const keyFormat = "price:%s:%s"

type RedisPrice struct {
	client *redis.Client
}

func NewRedisPrice(client *redis.Client) *RedisPrice {
	return &RedisPrice{client: client}
}

// ValueInBase returns amount of symbol valued in base. Identity when symbol
// equals base; otherwise the redis list must carry the price.
func (r *RedisPrice) ValueInBase(symbol string, amount float64, base string) (float64, error) {
	symbol = strings.ToUpper(symbol)
	base = strings.ToUpper(base)
	if symbol == base {
		return amount, nil
	}

	key := fmt.Sprintf(keyFormat, symbol, base)
	raw, err := r.client.Get(context.Background(), key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, fmt.Errorf("no reference price for %s in %s", symbol, base)
		}
		return 0, fmt.Errorf("read price %s: %w", key, err)
	}

	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed price %s=%q: %w", key, raw, err)
	}
	return amount * price, nil
}
