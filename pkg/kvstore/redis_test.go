package kvstore

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/fystack/kvstream/pkg/common/config"
	"github.com/fystack/kvstream/pkg/infra"
	"github.com/stretchr/testify/suite"
)

type RedisStoreTestSuite struct {
	suite.Suite
	client infra.RedisClient
	store  *RedisStore
	prefix string
}

func (suite *RedisStoreTestSuite) SetupSuite() {
	addr := os.Getenv("KVSTREAM_TEST_REDIS")
	if addr == "" {
		addr = "localhost:6379"
	}
	client, err := infra.NewRedisClient(config.RedisConfig{URL: addr})
	if err != nil {
		suite.T().Skip("Redis not available, skipping integration tests")
	}
	suite.client = client
	suite.prefix = fmt.Sprintf("kvstream_test_%d", time.Now().UnixNano())
	suite.store = NewRedisStore(client, suite.prefix)
}

func (suite *RedisStoreTestSuite) TearDownSuite() {
	if suite.client == nil {
		return
	}
	keys, _ := suite.client.Keys(suite.prefix + "/*")
	suite.NoError(suite.client.Del(keys...))
	suite.NoError(suite.client.Close())
}

func (suite *RedisStoreTestSuite) TestContract() {
	testStoreContract(suite.T(), suite.store)
}

func (suite *RedisStoreTestSuite) TestGlobCharactersInPrefix() {
	suite.Require().NoError(suite.store.Set("glob/[x]*", []byte("1")))
	suite.Require().NoError(suite.store.Set("glob/xy", []byte("2")))

	pairs, err := suite.store.List("glob/[x]")
	suite.Require().NoError(err)
	suite.Len(pairs, 1)
	suite.Equal("glob/[x]*", pairs[0].Key)
}

func TestRedisStoreTestSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreTestSuite))
}

func TestEscapeGlob(t *testing.T) {
	cases := map[string]string{
		"plain":   "plain",
		"a*b":     `a\*b`,
		"[x]?":    `\[x\]\?`,
		`back\sl`: `back\\sl`,
	}
	for in, want := range cases {
		if got := escapeGlob(in); got != want {
			t.Errorf("escapeGlob(%q) = %q, want %q", in, got, want)
		}
	}
}
