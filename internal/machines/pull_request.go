package machines

import (
	"context"

	sm "github.com/junbin-yang/go-statemachine/pkg/statemachine"
)

// User 合并请求的操作者
type User struct {
	Name    string
	IsAdmin bool
}

type pullRequestState struct {
	sm.Machine
	NumApprovals   int
	ChangesRequest bool
}

func newPullRequestState() pullRequestState {
	return pullRequestState{Machine: sm.NewMachine(sm.Text("opened"))}
}

func (pr *pullRequestState) approvedOrAdmin(u User) bool {
	return pr.NumApprovals >= 1 || u.IsAdmin
}

// GitHubPullRequestRegistry 合并请求流程的转换注册表
var GitHubPullRequestRegistry = sm.NewRegistryWithInitial("GitHubPullRequest", sm.Text("opened"))

var (
	prApprove = sm.MustDeclare("approve", sm.Spec{Source: "opened", Target: "opened"}, nil,
		func(pr *GitHubPullRequest, _ sm.NoArgs) (sm.NoArgs, error) {
			pr.NumApprovals++
			return sm.NoArgs{}, nil
		},
		sm.WithRegistry(GitHubPullRequestRegistry))

	prRequestChanges = sm.MustDeclare("request_changes", sm.Spec{Source: "opened", Target: "opened"}, nil,
		func(pr *GitHubPullRequest, _ sm.NoArgs) (sm.NoArgs, error) {
			pr.ChangesRequest = true
			return sm.NoArgs{}, nil
		},
		sm.WithRegistry(GitHubPullRequestRegistry))

	prClose = sm.MustDeclare("close_pull_request", sm.Spec{Source: "opened", Target: "closed"}, nil,
		func(*GitHubPullRequest, sm.NoArgs) (sm.NoArgs, error) { return sm.NoArgs{}, nil },
		sm.WithRegistry(GitHubPullRequestRegistry))

	prMerge = sm.MustDeclare("merge_pull_request", sm.Spec{Source: "opened", Target: "merged"},
		[]sm.Condition[*GitHubPullRequest, User]{
			sm.Check("is_approved_or_is_admin", func(pr *GitHubPullRequest, u User) bool { return pr.approvedOrAdmin(u) }),
		},
		func(*GitHubPullRequest, User) (sm.NoArgs, error) { return sm.NoArgs{}, nil },
		sm.WithRegistry(GitHubPullRequestRegistry))
)

// GitHubPullRequest 合并请求流程
type GitHubPullRequest struct {
	pullRequestState
}

func NewGitHubPullRequest() *GitHubPullRequest {
	return &GitHubPullRequest{pullRequestState: newPullRequestState()}
}

func (pr *GitHubPullRequest) Approve() error {
	_, err := prApprove.Call(pr, sm.NoArgs{})
	return err
}

func (pr *GitHubPullRequest) RequestChanges() error {
	_, err := prRequestChanges.Call(pr, sm.NoArgs{})
	return err
}

func (pr *GitHubPullRequest) ClosePullRequest() error {
	_, err := prClose.Call(pr, sm.NoArgs{})
	return err
}

// MergePullRequest 至少一个批准或管理员才能合并
func (pr *GitHubPullRequest) MergePullRequest(u User) error {
	_, err := prMerge.Call(pr, u)
	return err
}

// AsyncGitHubPullRequestRegistry 异步合并请求流程的转换注册表
var AsyncGitHubPullRequestRegistry = sm.NewRegistryWithInitial("AsyncGitHubPullRequest", sm.Text("opened"))

var (
	asyncPRApprove = sm.MustDeclareAsync("approve", sm.Spec{Source: "opened", Target: "opened"}, nil,
		func(_ context.Context, pr *AsyncGitHubPullRequest, _ sm.NoArgs) (sm.NoArgs, error) {
			pr.NumApprovals++
			return sm.NoArgs{}, nil
		},
		sm.WithRegistry(AsyncGitHubPullRequestRegistry))

	asyncPRRequestChanges = sm.MustDeclareAsync("request_changes", sm.Spec{Source: "opened", Target: "opened"}, nil,
		func(_ context.Context, pr *AsyncGitHubPullRequest, _ sm.NoArgs) (sm.NoArgs, error) {
			pr.ChangesRequest = true
			return sm.NoArgs{}, nil
		},
		sm.WithRegistry(AsyncGitHubPullRequestRegistry))

	asyncPRClose = sm.MustDeclareAsync("close_pull_request", sm.Spec{Source: "opened", Target: "closed"}, nil,
		func(context.Context, *AsyncGitHubPullRequest, sm.NoArgs) (sm.NoArgs, error) { return sm.NoArgs{}, nil },
		sm.WithRegistry(AsyncGitHubPullRequestRegistry))

	asyncPRFullyAsyncMerge = sm.MustDeclareAsync("fully_async_merge_pull_request",
		sm.Spec{Source: "opened", Target: "merged"},
		[]sm.Condition[*AsyncGitHubPullRequest, User]{
			sm.CheckAsync("async_is_approved_or_is_admin",
				func(_ context.Context, pr *AsyncGitHubPullRequest, u User) (bool, error) {
					return pr.approvedOrAdmin(u), nil
				}),
		},
		func(context.Context, *AsyncGitHubPullRequest, User) (sm.NoArgs, error) { return sm.NoArgs{}, nil },
		sm.WithRegistry(AsyncGitHubPullRequestRegistry))

	asyncPRMergeWithSyncCondition = sm.MustDeclareAsync("async_merge_pull_request_with_sync_condition",
		sm.Spec{Source: "opened", Target: "merged"},
		[]sm.Condition[*AsyncGitHubPullRequest, User]{
			sm.Check("sync_is_approved_or_is_admin", func(pr *AsyncGitHubPullRequest, u User) bool {
				return pr.approvedOrAdmin(u)
			}),
		},
		func(context.Context, *AsyncGitHubPullRequest, User) (sm.NoArgs, error) { return sm.NoArgs{}, nil },
		sm.WithRegistry(AsyncGitHubPullRequestRegistry))
)

// AsyncGitHubPullRequest 挂起执行路径的合并请求流程
type AsyncGitHubPullRequest struct {
	pullRequestState
}

func NewAsyncGitHubPullRequest() *AsyncGitHubPullRequest {
	return &AsyncGitHubPullRequest{pullRequestState: newPullRequestState()}
}

func (pr *AsyncGitHubPullRequest) Approve(ctx context.Context) error {
	_, err := asyncPRApprove.Call(ctx, pr, sm.NoArgs{})
	return err
}

func (pr *AsyncGitHubPullRequest) RequestChanges(ctx context.Context) error {
	_, err := asyncPRRequestChanges.Call(ctx, pr, sm.NoArgs{})
	return err
}

func (pr *AsyncGitHubPullRequest) ClosePullRequest(ctx context.Context) error {
	_, err := asyncPRClose.Call(ctx, pr, sm.NoArgs{})
	return err
}

// FullyAsyncMergePullRequest 条件本身也是挂起的
func (pr *AsyncGitHubPullRequest) FullyAsyncMergePullRequest(ctx context.Context, u User) error {
	_, err := asyncPRFullyAsyncMerge.Call(ctx, pr, u)
	return err
}

// MergePullRequestWithSyncCondition 挂起操作搭配阻塞条件
func (pr *AsyncGitHubPullRequest) MergePullRequestWithSyncCondition(ctx context.Context, u User) error {
	_, err := asyncPRMergeWithSyncCondition.Call(ctx, pr, u)
	return err
}
