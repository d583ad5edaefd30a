package es

import (
	"os"
	"strings"
	"testing"

	check "gopkg.in/check.v1"

	"github.com/mycok/webscout/textindexer/index/indextest"
)

var _ = check.Suite(new(esIndexTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

const testIndexName = "web_pages_test"

// esIndexTestSuite embeds and runs the BaseSuite tests methods.
type esIndexTestSuite struct {
	idx *ElasticsearchIndex
	indextest.BaseSuite
}

func (s *esIndexTestSuite) SetUpSuite(c *check.C) {
	nodeList := os.Getenv("ES_NODES")
	if nodeList == "" {
		c.Skip("Missing ES_NODES envvar: skipping elasticsearch index test suite")
	}

	idx, err := NewEsIndexer(strings.Split(nodeList, ","), testIndexName, true)
	c.Assert(err, check.IsNil)

	s.SetIndex(idx)
	s.idx = idx
}

func (s *esIndexTestSuite) SetUpTest(c *check.C) {
	if s.idx == nil {
		return
	}

	_, err := s.idx.client.Indices.Delete([]string{testIndexName})
	c.Assert(err, check.IsNil)
	c.Assert(initIndex(s.idx.client, testIndexName), check.IsNil)
}

func (s *esIndexTestSuite) TearDownSuite(c *check.C) {
	if s.idx == nil {
		return
	}

	_, err := s.idx.client.Indices.Delete([]string{testIndexName})
	c.Assert(err, check.IsNil)
}

func (s *esIndexTestSuite) TestName(c *check.C) {
	c.Assert(s.idx.Name(), check.Equals, "elasticsearch")
}
