package coverage

import (
	"regexp"
	"strings"

	"github.com/xctask/xctask/pkg/env"
)

// DefaultServiceName is reported when no CI provider is detected.
const DefaultServiceName = "travis-ci"

// CI is the build metadata of the current CI provider.
type CI struct {
	ServiceName string
	JobID       string
	BuildNumber string
	PullRequest string
	Branch      string
	Parallel    bool
}

var githubPullRef = regexp.MustCompile(`^refs/pull/(\d+)/`)

// DetectCI inspects known CI environment variables. Without a recognized
// provider the Travis defaults apply: service travis-ci with TRAVIS_JOB_ID.
func DetectCI(lookup env.LookupFunc) CI {
	if lookup == nil {
		lookup = env.OS
	}
	get := lookup.Get
	ci := CI{Parallel: truthy(get("COVERALLS_PARALLEL"))}

	switch {
	case truthy(get("TRAVIS")):
		ci.ServiceName = "travis-ci"
		ci.JobID = get("TRAVIS_JOB_ID")
		ci.BuildNumber = get("TRAVIS_BUILD_NUMBER")
		ci.Branch = get("TRAVIS_BRANCH")
		if pr := get("TRAVIS_PULL_REQUEST"); pr != "false" {
			ci.PullRequest = pr
		}
	case truthy(get("CIRCLECI")):
		ci.ServiceName = "circleci"
		ci.JobID = get("CIRCLE_WORKFLOW_JOB_ID")
		ci.BuildNumber = get("CIRCLE_BUILD_NUM")
		ci.Branch = get("CIRCLE_BRANCH")
		ci.PullRequest = lastPathElement(get("CIRCLE_PULL_REQUEST"))
	case truthy(get("GITHUB_ACTIONS")):
		ci.ServiceName = "github"
		ci.JobID = get("GITHUB_RUN_ID")
		ci.BuildNumber = get("GITHUB_RUN_NUMBER")
		ci.Branch = get("GITHUB_HEAD_REF")
		if ci.Branch == "" {
			ci.Branch = strings.TrimPrefix(get("GITHUB_REF"), "refs/heads/")
		}
		if m := githubPullRef.FindStringSubmatch(get("GITHUB_REF")); m != nil {
			ci.PullRequest = m[1]
		}
	case truthy(get("BITRISE_IO")):
		ci.ServiceName = "bitrise"
		ci.JobID = get("BITRISE_BUILD_SLUG")
		ci.BuildNumber = get("BITRISE_BUILD_NUMBER")
		ci.Branch = get("BITRISE_GIT_BRANCH")
		ci.PullRequest = get("BITRISE_PULL_REQUEST")
	case get("JENKINS_URL") != "":
		ci.ServiceName = "jenkins"
		ci.JobID = get("BUILD_ID")
		ci.BuildNumber = get("BUILD_NUMBER")
		ci.Branch = get("GIT_BRANCH")
		ci.PullRequest = get("ghprbPullId")
	default:
		ci.ServiceName = DefaultServiceName
		ci.JobID = get("TRAVIS_JOB_ID")
	}
	return ci
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func lastPathElement(url string) string {
	if url == "" {
		return ""
	}
	return url[strings.LastIndex(url, "/")+1:]
}
